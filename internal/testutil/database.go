package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/rfidgate/internal/model"
	"github.com/Veraticus/rfidgate/internal/storage"
)

// SetupTestDB creates a migrated in-memory journal that is closed when the
// test ends.
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// MustAccessEvents returns every journal entry, oldest first, or fails the test.
func MustAccessEvents(t *testing.T, store *storage.SQLiteStorage) []model.AccessEvent {
	t.Helper()

	events, err := store.GetAccessEvents(context.Background(), storage.AccessEventFilter{})
	if err != nil {
		t.Fatalf("failed to read access events: %v", err)
	}
	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events
}

// SeedAccessEvents records one event per identifier, a minute apart starting
// at base, alternating Granted and Denied.
func SeedAccessEvents(t *testing.T, store *storage.SQLiteStorage, base time.Time, ids ...string) {
	t.Helper()

	for i, id := range ids {
		verdict := "Granted"
		if i%2 == 1 {
			verdict = "Denied"
		}
		event := &model.AccessEvent{
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			Port:       "sim0",
			Identifier: id,
			Verdict:    verdict,
		}
		if err := store.RecordAccessEvent(context.Background(), event); err != nil {
			t.Fatalf("failed to seed access event %q: %v", id, err)
		}
	}
}
