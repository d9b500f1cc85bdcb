// Package models defines the core domain records of the PairPay ledger.
//
// # Entities
//
//   - User: a registered account, identified by a unique mail address
//   - Friendship / FriendRequest: the consent-based friend graph
//   - Bill: a named cost container owned by its creator, with members
//   - BillInvitation: a pending offer of Bill membership
//   - Expense / Share: one payment inside a Bill and each user's owed part
//
// # Derived views
//
// DebtInfo, BalanceSheet and the Bill totals are never stored. They are
// recomputed from Expenses and Shares whenever they are read.
//
// # Conventions
//
//  1. IDs are int64 row ids; relationships are expressed by ID, not pointers.
//  2. Money is always money.Amount (integer minor units) plus a currency code.
//  3. Timestamps are Unix seconds.
package models
