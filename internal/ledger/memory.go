package ledger

import (
	"sync"

	"github.com/nexusapp/nexus/internal/catalog"
)

// DefaultStartingBalance is the NEX balance a fresh user starts with.
const DefaultStartingBalance = 5000

// MemoryStore is an in-memory ledger. Entries live for the process lifetime;
// nothing is persisted across restarts.
type MemoryStore struct {
	mu              sync.Mutex
	entries         map[string]*entry
	startingBalance int
}

type entry struct {
	balance int
	pets    []catalog.Pet
}

func NewMemoryStore(startingBalance int) *MemoryStore {
	if startingBalance < 0 {
		startingBalance = DefaultStartingBalance
	}
	return &MemoryStore{
		entries:         make(map[string]*entry),
		startingBalance: startingBalance,
	}
}

func (s *MemoryStore) GetOrCreate(userID string) Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(userID).snapshot()
}

func (s *MemoryStore) Debit(userID string, amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[userID]
	if !ok {
		return false
	}
	if amount < 0 || e.balance < amount {
		return false
	}

	e.balance -= amount
	return true
}

func (s *MemoryStore) Credit(userID string, pet catalog.Pet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.getOrCreateLocked(userID)
	e.pets = append(e.pets, pet)
}

func (s *MemoryStore) getOrCreateLocked(userID string) *entry {
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{balance: s.startingBalance}
		s.entries[userID] = e
	}
	return e
}

func (e *entry) snapshot() Entry {
	pets := make([]catalog.Pet, len(e.pets))
	copy(pets, e.pets)
	return Entry{Balance: e.balance, Pets: pets}
}
