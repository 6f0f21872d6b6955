package repository

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/admp-api/internal/models"
)

func newStoreRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestGetDocumentsEmptyCollection(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(CollectionDocuments).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	docs, err := repo.GetDocuments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateDocumentsAppliesTransformToStoredPayload(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	existing := []models.Document{
		{ID: "d1", Title: "Graph Theory", Category: models.CategoryBooks, Department: models.DeptCSE},
	}
	existingPayload, err := json.Marshal(existing)
	require.NoError(t, err)

	added := models.Document{ID: "d2", Title: "Compiler Notes", Category: models.CategoryBooks, Department: models.DeptCSE}
	expectedPayload, err := json.Marshal([]models.Document{added, existing[0]})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(CollectionDocuments).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(existingPayload))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO record_collections")).
		WithArgs(CollectionDocuments, expectedPayload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = repo.MutateDocuments(context.Background(), func(docs []models.Document) ([]models.Document, error) {
		require.Len(t, docs, 1)
		return append([]models.Document{added}, docs...), nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// Two goroutines mutate the same collection at once. The writer lock must
// hold across the whole read-transform-replace cycle, so the statements can
// only arrive strictly interleaved: select, insert, select, insert. An
// implementation that reads outside the lock would issue both selects first
// and trip the ordered expectations.
func TestMutateDocumentsSerializesConcurrentWriters(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	mock.MatchExpectationsInOrder(true)
	for i := 0; i < 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
			WithArgs(CollectionDocuments).
			WillReturnRows(sqlmock.NewRows([]string{"payload"}))
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO record_collections")).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			err := repo.MutateDocuments(context.Background(), func(docs []models.Document) ([]models.Document, error) {
				return append(docs, models.Document{ID: id}), nil
			})
			assert.NoError(t, err)
		}("doc-" + string(rune('a'+i)))
	}
	wg.Wait()
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMutateUsersCallbackErrorAbortsWrite(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(CollectionUsers).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	sentinel := assert.AnError
	err := repo.MutateUsers(context.Background(), func(users []models.User) ([]models.User, error) {
		return nil, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUsersDecodesPayload(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	payload, _ := json.Marshal([]models.User{{ID: "u1", Email: "anita@college.edu", Role: models.RoleStaff}})
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(CollectionUsers).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))

	users, err := repo.GetUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleStaff, users[0].Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionSlotLifecycle(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	user := models.User{ID: "u1", Email: "anita@college.edu"}
	payload, _ := json.Marshal(user)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO record_collections")).
		WithArgs(slotSession, payload, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.SetSession(context.Background(), user))

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(slotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow(payload))
	loaded, err := repo.GetSession(context.Background())
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "u1", loaded.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM record_collections WHERE name = $1")).
		WithArgs(slotSession).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.ClearSession(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetSessionUnparseableSlotIsAbsent(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(slotSession).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte("{broken")))

	loaded, err := repo.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClearAllWipesEveryCollection(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	repo := NewStoreRepository(db, nil)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM record_collections WHERE name = ANY($1)")).
		WillReturnResult(sqlmock.NewResult(0, 4))

	require.NoError(t, repo.ClearAll(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

type recordingMetrics struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingMetrics) ObserveStoreOp(op string, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func TestStoreOpsAreObserved(t *testing.T) {
	db, mock, cleanup := newStoreRepoMock(t)
	defer cleanup()

	metrics := &recordingMetrics{}
	repo := NewStoreRepository(db, metrics)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE name = $1")).
		WithArgs(CollectionDocuments).
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO record_collections")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MutateDocuments(context.Background(), func(docs []models.Document) ([]models.Document, error) {
		return docs, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"read_documents", "replace_documents"}, metrics.ops)
	require.NoError(t, mock.ExpectationsWereMet())
}
