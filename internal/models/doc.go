// Package models defines the core domain models for splitcheck.
//
// # Models
//
//   - Session: one shared bill with its fee parameters and expected participant count
//   - Friend: one participant's submitted order, with the amounts computed at join time
//   - Product: one line item on a friend's order
//   - Summary: session-wide payment totals, recomputed on every read
//
// # Design Principles
//
// 1. **No accounts**: anyone holding the session link can join or mark payments
// 2. **Derived amounts are frozen**: a friend's totals are computed once when they join
// 3. **Avoid circular references**: relationships use ID strings, not pointers
// 4. **One payment method type**: PaymentMethod is used on both write and read paths
package models
