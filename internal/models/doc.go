// Package models defines the core domain models for billpay.
//
// # Models
//
//   - Subscriber: an account holder, identified externally by a subscriber
//     number and internally by a numeric ID
//   - Bill: one billing-period obligation owned by a subscriber
//
// # Enumerations
//
// UserType and PaymentStatus are closed enumerations. They are persisted as
// text ("normal"/"admin", "unpaid"/"paid") and implement sql.Scanner and
// driver.Valuer so that both storage backends read and write them directly.
//
// # Amounts
//
// Monetary amounts are int64 values in minor currency units. Equality checks
// in the payment rules depend on exact arithmetic, so floats are never used.
//
// # Design Principles
//
//  1. **No back-pointers**: a Bill references its owner by SubscriberID only
//  2. **Derived status**: PaymentStatus must agree with RemainingAmount
//  3. **No raw secrets**: Subscriber holds a credential hash, never a password
package models
