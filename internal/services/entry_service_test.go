package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	dbtestutil "github.com/charlesng35/formstore/internal/database/testutil"
	"github.com/charlesng35/formstore/internal/models"
	"github.com/charlesng35/formstore/internal/storage"
	appErrors "github.com/charlesng35/formstore/pkg/errors"
	"github.com/charlesng35/formstore/pkg/metrics"
)

type brokenStore struct {
	err error
}

func (b brokenStore) Mode() storage.Mode { return storage.ModeDatabase }

func (b brokenStore) Create(context.Context, string) (models.Entry, storage.Mode, error) {
	return models.Entry{}, storage.ModeDatabase, b.err
}

func (b brokenStore) Recent(context.Context, int) ([]models.Entry, error) { return nil, b.err }

func (b brokenStore) Count(context.Context) (int64, error) { return 0, b.err }

func TestNewEntryServiceRequiresStore(t *testing.T) {
	_, err := NewEntryService(nil)
	require.Error(t, err)
}

func TestEntryServiceCreateRejectsBlankValues(t *testing.T) {
	store := storage.NewMemoryStore()
	svc, err := NewEntryService(store)
	require.NoError(t, err)

	for _, value := range []string{"", "   ", "\t\n"} {
		_, err := svc.Create(context.Background(), value)
		require.ErrorIs(t, err, appErrors.ErrValueRequired)
	}

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestEntryServiceCreateKeepsValueUntrimmed(t *testing.T) {
	svc, err := NewEntryService(storage.NewMemoryStore())
	require.NoError(t, err)

	before := testutil.ToFloat64(metrics.EntriesCreated.WithLabelValues("memory"))

	result, err := svc.Create(context.Background(), "  hola  ")
	require.NoError(t, err)
	require.Equal(t, "  hola  ", result.Entry.Value)
	require.Equal(t, storage.ModeMemory, result.Storage)
	require.Equal(t, MessageSavedMemory, result.Message())

	require.Equal(t, before+1, testutil.ToFloat64(metrics.EntriesCreated.WithLabelValues("memory")))
}

func TestEntryServiceDatabaseMessage(t *testing.T) {
	db := dbtestutil.MustOpenTestDB(t, dbtestutil.WithAutoMigrate())
	store, err := storage.NewDatabaseStore(db)
	require.NoError(t, err)
	svc, err := NewEntryService(store)
	require.NoError(t, err)
	require.Equal(t, storage.ModeDatabase, svc.Mode())

	result, err := svc.Create(context.Background(), "persisted")
	require.NoError(t, err)
	require.Equal(t, MessageSavedDatabase, result.Message())

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, result.Entry.ID, entries[0].ID)
}

func TestEntryServiceListAppliesLimit(t *testing.T) {
	svc, err := NewEntryService(storage.NewMemoryStore(), WithListLimit(3))
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := svc.Create(context.Background(), fmt.Sprintf("v%d", i))
		require.NoError(t, err)
	}

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "v4", entries[0].Value)

	count, err := svc.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
}

func TestEntryServiceListEmptyIsNotNil(t *testing.T) {
	svc, err := NewEntryService(storage.NewMemoryStore())
	require.NoError(t, err)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.NotNil(t, entries)
	require.Empty(t, entries)
}

func TestEntryServiceMapsStoreFailures(t *testing.T) {
	boom := errors.New("connection refused")
	svc, err := NewEntryService(brokenStore{err: boom})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), "value")
	require.ErrorIs(t, err, appErrors.ErrSaveFailed)
	require.ErrorIs(t, err, boom)

	_, err = svc.List(context.Background())
	require.ErrorIs(t, err, appErrors.ErrFetchFailed)
}
