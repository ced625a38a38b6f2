package scraper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anton-sementsov/parser-upw/internal/models"
)

type fakeStore struct {
	existing  map[string]bool
	inserted  []models.JobRecord
	updated   []string
	countErr  map[string]error
	insertErr map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		existing:  map[string]bool{},
		countErr:  map[string]error{},
		insertErr: map[string]error{},
	}
}

func (s *fakeStore) CountByID(_ context.Context, jobID string) (int, error) {
	if err := s.countErr[jobID]; err != nil {
		return 0, err
	}
	if s.existing[jobID] {
		return 1, nil
	}
	return 0, nil
}

func (s *fakeStore) Insert(_ context.Context, record models.JobRecord) error {
	if err := s.insertErr[record.ID]; err != nil {
		return err
	}
	s.inserted = append(s.inserted, record)
	s.existing[record.ID] = true
	return nil
}

func (s *fakeStore) UpdateProposals(_ context.Context, jobID, _ string, _ time.Time) error {
	s.updated = append(s.updated, jobID)
	return nil
}

type fakeNotifier struct {
	notified []string
}

func (n *fakeNotifier) NotifyNewJob(record models.JobRecord) {
	n.notified = append(n.notified, record.ID)
}

func testRunner(store Store, notifier Notifier) *Runner {
	return &Runner{
		store:    store,
		notifier: notifier,
		now:      func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) },
	}
}

func TestPersistOne_NewRecordInsertsAndNotifies(t *testing.T) {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	runner := testRunner(store, notifier)

	record := models.JobRecord{ID: "abc", Title: "Go scraper", Proposals: "Less than 5"}
	require.NoError(t, runner.persistOne(context.Background(), record))

	require.Len(t, store.inserted, 1)
	assert.Empty(t, store.updated)
	assert.Equal(t, []string{"abc"}, notifier.notified)
}

func TestPersistOne_ExistingRecordUpdatesWithoutNotifying(t *testing.T) {
	store := newFakeStore()
	store.existing["abc"] = true
	notifier := &fakeNotifier{}
	runner := testRunner(store, notifier)

	record := models.JobRecord{ID: "abc", Title: "Go scraper", Proposals: "20 to 50"}
	require.NoError(t, runner.persistOne(context.Background(), record))

	assert.Empty(t, store.inserted)
	assert.Equal(t, []string{"abc"}, store.updated)
	assert.Empty(t, notifier.notified, "re-sighting must never notify")
}

func TestPersistOne_NilNotifier(t *testing.T) {
	store := newFakeStore()
	runner := testRunner(store, nil)

	record := models.JobRecord{ID: "abc", Title: "Go scraper"}
	require.NoError(t, runner.persistOne(context.Background(), record))
	require.Len(t, store.inserted, 1)
}

func TestPersistAll_OneFailureDoesNotAbortTheRest(t *testing.T) {
	store := newFakeStore()
	store.countErr["bad"] = errors.New("connection reset")
	notifier := &fakeNotifier{}
	runner := testRunner(store, notifier)

	records := []models.JobRecord{
		{ID: "one", Title: "First"},
		{ID: "bad", Title: "Broken"},
		{ID: "two", Title: "Second"},
	}
	runner.persistAll(context.Background(), records)

	require.Len(t, store.inserted, 2)
	assert.Equal(t, []string{"one", "two"}, notifier.notified)
}

func TestPersistOne_InsertErrorDoesNotNotify(t *testing.T) {
	store := newFakeStore()
	store.insertErr["abc"] = errors.New("duplicate key")
	notifier := &fakeNotifier{}
	runner := testRunner(store, notifier)

	err := runner.persistOne(context.Background(), models.JobRecord{ID: "abc"})
	require.Error(t, err)
	assert.Empty(t, notifier.notified)
}
