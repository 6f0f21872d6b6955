package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/campusdocs/admp-api/internal/models"
)

// Collection names persisted in the record store.
const (
	CollectionUsers     = "users"
	CollectionDocuments = "documents"
	CollectionActivity  = "activity"
	slotSession         = "session"
)

// StoreMetrics receives timings for record store operations.
type StoreMetrics interface {
	ObserveStoreOp(op string, duration time.Duration)
}

// StoreRepository is the record store: named collections persisted as whole
// JSON payloads with full-replace semantics, plus a single-value session
// slot. There are no partial updates and no cross-collection transactions;
// a write of one collection never rolls back another. All mutations go
// through the Mutate* methods, which hold the single-writer lock across the
// whole read-transform-replace cycle so concurrent callers never clobber
// each other's writes.
type StoreRepository struct {
	db      *sqlx.DB
	metrics StoreMetrics
	mu      sync.Mutex
}

// NewStoreRepository creates a new instance of StoreRepository. metrics may
// be nil.
func NewStoreRepository(db *sqlx.DB, metrics StoreMetrics) *StoreRepository {
	return &StoreRepository{db: db, metrics: metrics}
}

func (r *StoreRepository) observe(op string, start time.Time) {
	if r.metrics != nil {
		r.metrics.ObserveStoreOp(op, time.Since(start))
	}
}

func (r *StoreRepository) getPayload(ctx context.Context, name string) ([]byte, error) {
	defer r.observe("read_"+name, time.Now())
	const query = `SELECT payload FROM record_collections WHERE name = $1 LIMIT 1`
	var payload []byte
	if err := r.db.GetContext(ctx, &payload, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get collection %s: %w", name, err)
	}
	return payload, nil
}

func (r *StoreRepository) setPayload(ctx context.Context, name string, payload []byte) error {
	defer r.observe("replace_"+name, time.Now())
	const query = `INSERT INTO record_collections (name, payload, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, name, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("replace collection %s: %w", name, err)
	}
	return nil
}

func (r *StoreRepository) readUsers(ctx context.Context) ([]models.User, error) {
	payload, err := r.getPayload(ctx, CollectionUsers)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []models.User{}, nil
	}
	var users []models.User
	if err := json.Unmarshal(payload, &users); err != nil {
		return nil, fmt.Errorf("decode users collection: %w", err)
	}
	return users, nil
}

func (r *StoreRepository) readDocuments(ctx context.Context) ([]models.Document, error) {
	payload, err := r.getPayload(ctx, CollectionDocuments)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []models.Document{}, nil
	}
	var docs []models.Document
	if err := json.Unmarshal(payload, &docs); err != nil {
		return nil, fmt.Errorf("decode documents collection: %w", err)
	}
	return docs, nil
}

func (r *StoreRepository) readActivity(ctx context.Context) ([]models.ActivityEntry, error) {
	payload, err := r.getPayload(ctx, CollectionActivity)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return []models.ActivityEntry{}, nil
	}
	var entries []models.ActivityEntry
	if err := json.Unmarshal(payload, &entries); err != nil {
		return nil, fmt.Errorf("decode activity collection: %w", err)
	}
	return entries, nil
}

// GetUsers reads the whole users collection.
func (r *StoreRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	return r.readUsers(ctx)
}

// MutateUsers applies fn to the users collection and replaces it with the
// result, holding the writer lock across read, transform and replace. When
// fn returns an error nothing is written and the error is passed through.
func (r *StoreRepository) MutateUsers(ctx context.Context, fn func(users []models.User) ([]models.User, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	users, err := r.readUsers(ctx)
	if err != nil {
		return err
	}
	next, err := fn(users)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode users collection: %w", err)
	}
	return r.setPayload(ctx, CollectionUsers, payload)
}

// GetDocuments reads the whole documents collection. Storage order is
// newest-first: uploads insert at the head.
func (r *StoreRepository) GetDocuments(ctx context.Context) ([]models.Document, error) {
	return r.readDocuments(ctx)
}

// MutateDocuments applies fn to the documents collection and replaces it
// with the result under the writer lock. fn errors abort without writing.
func (r *StoreRepository) MutateDocuments(ctx context.Context, fn func(docs []models.Document) ([]models.Document, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	docs, err := r.readDocuments(ctx)
	if err != nil {
		return err
	}
	next, err := fn(docs)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode documents collection: %w", err)
	}
	return r.setPayload(ctx, CollectionDocuments, payload)
}

// GetActivity reads the whole activity collection, newest-first.
func (r *StoreRepository) GetActivity(ctx context.Context) ([]models.ActivityEntry, error) {
	return r.readActivity(ctx)
}

// MutateActivity applies fn to the activity collection and replaces it with
// the result under the writer lock. fn errors abort without writing.
func (r *StoreRepository) MutateActivity(ctx context.Context, fn func(entries []models.ActivityEntry) ([]models.ActivityEntry, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries, err := r.readActivity(ctx)
	if err != nil {
		return err
	}
	next, err := fn(entries)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode activity collection: %w", err)
	}
	return r.setPayload(ctx, CollectionActivity, payload)
}

// GetSession returns the persisted current-session user, or nil when the
// slot is absent or unparseable.
func (r *StoreRepository) GetSession(ctx context.Context) (*models.User, error) {
	payload, err := r.getPayload(ctx, slotSession)
	if err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, nil
	}
	var user models.User
	if err := json.Unmarshal(payload, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// SetSession persists the current-session user. The slot is a single-value
// replace, so no read is needed before the write.
func (r *StoreRepository) SetSession(ctx context.Context, user models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session slot: %w", err)
	}
	return r.setPayload(ctx, slotSession, payload)
}

// ClearSession removes the current-session marker.
func (r *StoreRepository) ClearSession(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe("clear_session", time.Now())
	const query = `DELETE FROM record_collections WHERE name = $1`
	if _, err := r.db.ExecContext(ctx, query, slotSession); err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}

// ClearAll erases every collection and the session slot. Factory reset;
// callers must obtain explicit confirmation before invoking.
func (r *StoreRepository) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer r.observe("clear_all", time.Now())
	const query = `DELETE FROM record_collections WHERE name = ANY($1)`
	names := []string{CollectionUsers, CollectionDocuments, CollectionActivity, slotSession}
	if _, err := r.db.ExecContext(ctx, query, pq.Array(names)); err != nil {
		return fmt.Errorf("clear record store: %w", err)
	}
	return nil
}
