// Package ledger tracks per-user NEX balances and pet inventories.
package ledger

import "github.com/nexusapp/nexus/internal/catalog"

// Entry is a snapshot of one user's balance and inventory. The pet slice is
// a copy; mutating it does not touch the store.
type Entry struct {
	Balance int
	Pets    []catalog.Pet
}

// Store is the balance and inventory ledger, keyed by user ID. The purchase
// flow depends only on this interface so a persistent implementation can be
// swapped in without touching the transactor.
type Store interface {
	// GetOrCreate returns the user's entry, creating it with the starting
	// balance and an empty inventory on first reference. It never fails.
	GetOrCreate(userID string) Entry

	// Debit subtracts amount from the user's balance. It returns false,
	// leaving the entry unchanged, when no entry exists or the balance
	// would go negative. This is the only mutation point for balance
	// decreases.
	Debit(userID string, amount int) bool

	// Credit appends a pet to the user's inventory. Duplicates are allowed
	// and the inventory is unbounded.
	Credit(userID string, pet catalog.Pet)
}
