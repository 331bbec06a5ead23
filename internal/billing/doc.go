// Package billing applies payments to bills and answers the bill queries
// made by the banking, mobile-provider and website channels.
//
// # Payment rules
//
// Classify decides how a payment changes a bill. Given the bill's total T,
// its remaining balance R and a payment P:
//
//	P <= 0               rejected
//	bill already paid    rejected
//	P == T               remaining 0, paid
//	P <  R               remaining R-P, unpaid
//	P == R               remaining 0, paid
//	otherwise            rejected
//
// The order matters: a payment equal to the full total settles the bill
// even after earlier partial payments. Partial payments always subtract
// from the remaining balance, so several of them accumulate.
//
// Engine.ApplyPayment runs lookup, classification and save in one store
// transaction; a rejected payment leaves the bill untouched.
package billing
