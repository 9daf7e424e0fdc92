// Package wallet provides the ledger side of the dispatch core: the Wallet
// aggregate with its append-only Transaction log and the Payout settlement
// batch.
//
// Key business rules:
//   - Transactions are append-only; once written they are immutable apart
//     from the settlement marker the payout job sets when consuming earnings
//   - The cached balance always equals the sum of transaction amounts;
//     posting a transaction and updating the balance happen together
//   - Payout batches are idempotent by period key: re-settling an already
//     settled period moves no money
package wallet
