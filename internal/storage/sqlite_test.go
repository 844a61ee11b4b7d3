package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/rfidgate/internal/model"
)

// Helper function to create test storage.
func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "Failed to create storage")

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func seedEvents(t *testing.T, store *SQLiteStorage, base time.Time) {
	t.Helper()
	events := []model.AccessEvent{
		{OccurredAt: base, Port: "/dev/ttyUSB0", Identifier: "A1", Verdict: "Granted", CheckMode: false},
		{OccurredAt: base.Add(time.Minute), Port: "/dev/ttyUSB0", Identifier: "B2", Verdict: "Denied", CheckMode: false},
		{OccurredAt: base.Add(2 * time.Minute), Port: "/dev/ttyUSB0", Identifier: "A1", Verdict: "Granted", CheckMode: true},
		{OccurredAt: base.Add(3 * time.Minute), Port: "/dev/ttyUSB1", Identifier: "C3", Verdict: "Denied", CheckMode: true},
	}
	for i := range events {
		require.NoError(t, store.RecordAccessEvent(context.Background(), &events[i]))
		assert.NotZero(t, events[i].ID)
	}
}

func TestSQLiteStorage_RecordAndQuery(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedEvents(t, store, base)

	all, err := store.GetAccessEvents(ctx, AccessEventFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "C3", all[0].Identifier, "newest first")
	assert.Equal(t, "/dev/ttyUSB1", all[0].Port)
	assert.True(t, all[0].CheckMode)
	assert.True(t, all[0].OccurredAt.Equal(base.Add(3*time.Minute)))

	tests := []struct {
		name   string
		filter AccessEventFilter
		want   []string
	}{
		{
			name:   "by identifier",
			filter: AccessEventFilter{Identifier: "A1"},
			want:   []string{"A1", "A1"},
		},
		{
			name:   "by verdict",
			filter: AccessEventFilter{Verdict: "Denied"},
			want:   []string{"C3", "B2"},
		},
		{
			name:   "since",
			filter: AccessEventFilter{Since: ptrTime(base.Add(90 * time.Second))},
			want:   []string{"C3", "A1"},
		},
		{
			name:   "limit",
			filter: AccessEventFilter{Limit: 1},
			want:   []string{"C3"},
		},
		{
			name:   "no match",
			filter: AccessEventFilter{Identifier: "ZZ"},
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := store.GetAccessEvents(ctx, tt.filter)
			require.NoError(t, err)

			var got []string
			for _, e := range events {
				got = append(got, e.Identifier)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteStorage_RecordDefaultsTimestamp(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	before := time.Now().Add(-time.Second)
	event := &model.AccessEvent{Identifier: "A1", Verdict: "Granted"}
	require.NoError(t, store.RecordAccessEvent(context.Background(), event))
	assert.True(t, event.OccurredAt.After(before))
}

func TestSQLiteStorage_RecordValidation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	tests := []struct {
		event   *model.AccessEvent
		wantErr error
		name    string
	}{
		{name: "nil event", event: nil, wantErr: ErrNilParameter},
		{name: "missing identifier", event: &model.AccessEvent{Verdict: "Granted"}, wantErr: ErrInvalidAccessEvent},
		{name: "missing verdict", event: &model.AccessEvent{Identifier: "A1"}, wantErr: ErrInvalidAccessEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.RecordAccessEvent(ctx, tt.event)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, store.RecordAccessEvent(nil, &model.AccessEvent{Identifier: "A", Verdict: "Denied"}), ErrNilContext)
}

func TestSQLiteStorage_Summary(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedEvents(t, store, base)

	summary, err := store.GetAccessSummary(ctx, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Identifiers)
	assert.Equal(t, map[string]int{"Granted": 2, "Denied": 2}, summary.ByVerdict)

	recent, err := store.GetAccessSummary(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, recent.Total)
	assert.Equal(t, 1, recent.ByVerdict["Granted"])
	assert.Equal(t, 1, recent.ByVerdict["Denied"])
}

func TestSQLiteStorage_Prune(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	seedEvents(t, store, base)

	removed, err := store.PruneAccessEvents(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	events, err := store.GetAccessEvents(ctx, AccessEventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = store.PruneAccessEvents(ctx, time.Time{})
	assert.ErrorIs(t, err, ErrInvalidTime)
}

func TestSQLiteStorage_Migrations(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")
	ctx := context.Background()

	store1, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store1.Migrate(ctx), "Initial migration failed")
	_ = store1.Close()

	// Running migrations again must not error
	store2, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = store2.Close() }()
	require.NoError(t, store2.Migrate(ctx), "Repeated migration failed")

	version, err := store2.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
	assert.Equal(t, dbPath, store2.Path())

	err = store2.RecordAccessEvent(ctx, &model.AccessEvent{Identifier: "A1", Verdict: "Granted", CheckMode: true})
	assert.NoError(t, err, "Database not functional after migration")
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	require.NoError(t, store.Migrate(context.Background()))
	require.NoError(t, store.RecordAccessEvent(context.Background(), &model.AccessEvent{Identifier: "A1", Verdict: "Denied"}))
}

func TestNewSQLiteStorage_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestSQLiteStorage_ConcurrentAccess(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	var (
		wg   sync.WaitGroup
		errs = make(chan error, 10)
	)

	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func(id int) {
			defer wg.Done()
			event := &model.AccessEvent{Identifier: string(rune('A' + id)), Verdict: "Denied"}
			if err := store.RecordAccessEvent(ctx, event); err != nil {
				errs <- err
			}
		}(i)
		go func() {
			defer wg.Done()
			if _, err := store.GetAccessEvents(ctx, AccessEventFilter{}); err != nil {
				errs <- err
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Concurrent access error: %v", err)
	}

	events, err := store.GetAccessEvents(ctx, AccessEventFilter{})
	require.NoError(t, err)
	assert.Len(t, events, 5)
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
