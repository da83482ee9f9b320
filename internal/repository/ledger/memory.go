package ledger

import (
	"context"
	"log/slog"
	"sync"

	"github.com/jgivc/assignfetch/internal/entity"
)

type memoryRepository struct {
	mu      sync.Mutex
	entries map[entity.RollNumber]*entity.LedgerEntry
	order   []entity.RollNumber
	log     *slog.Logger
}

// NewMemoryRepository keeps counters in process memory. A restart drops them.
func NewMemoryRepository(log *slog.Logger) *memoryRepository {
	return &memoryRepository{
		entries: make(map[entity.RollNumber]*entity.LedgerEntry),
		log:     log.With(slog.String("item", "MemoryLedger")),
	}
}

func (r *memoryRepository) Increment(_ context.Context, roll entity.RollNumber, file string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[roll]
	if !exists {
		entry = &entity.LedgerEntry{
			RollNumber: roll,
			File:       file,
		}
		r.entries[roll] = entry
		r.order = append(r.order, roll)

		r.log.Debug("New ledger entry", slog.String("roll", roll.String()), slog.String("file", file))
	}

	entry.Count++

	return entry.Count, nil
}

// List returns entries in the order they were first recorded.
func (r *memoryRepository) List(_ context.Context) ([]*entity.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]*entity.LedgerEntry, 0, len(r.order))
	for _, roll := range r.order {
		e := *r.entries[roll]
		entries = append(entries, &e)
	}

	return entries, nil
}
