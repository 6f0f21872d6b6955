package service

import (
	"context"
	"sync"

	"github.com/campusdocs/admp-api/internal/models"
)

// memStore is an in-memory record store used across the service tests. It
// mirrors the real repository's contract: whole-collection reads, and
// mutations that hold a single writer lock across read, transform and
// replace.
type memStore struct {
	mu       sync.Mutex
	users    []models.User
	docs     []models.Document
	activity []models.ActivityEntry
	session  *models.User

	usersErr    error
	docsErr     error
	activityErr error

	saveUserCalls int
	saveDocCalls  int
	clearAllCalls int
}

func (m *memStore) GetUsers(context.Context) ([]models.User, error) {
	if m.usersErr != nil {
		return nil, m.usersErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.User{}, m.users...), nil
}

func (m *memStore) MutateUsers(_ context.Context, fn func(users []models.User) ([]models.User, error)) error {
	if m.usersErr != nil {
		return m.usersErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(append([]models.User{}, m.users...))
	if err != nil {
		return err
	}
	m.users = append([]models.User{}, next...)
	m.saveUserCalls++
	return nil
}

func (m *memStore) GetDocuments(context.Context) ([]models.Document, error) {
	if m.docsErr != nil {
		return nil, m.docsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Document{}, m.docs...), nil
}

func (m *memStore) MutateDocuments(_ context.Context, fn func(docs []models.Document) ([]models.Document, error)) error {
	if m.docsErr != nil {
		return m.docsErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(append([]models.Document{}, m.docs...))
	if err != nil {
		return err
	}
	m.docs = append([]models.Document{}, next...)
	m.saveDocCalls++
	return nil
}

func (m *memStore) GetActivity(context.Context) ([]models.ActivityEntry, error) {
	if m.activityErr != nil {
		return nil, m.activityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.ActivityEntry{}, m.activity...), nil
}

func (m *memStore) MutateActivity(_ context.Context, fn func(entries []models.ActivityEntry) ([]models.ActivityEntry, error)) error {
	if m.activityErr != nil {
		return m.activityErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(append([]models.ActivityEntry{}, m.activity...))
	if err != nil {
		return err
	}
	m.activity = append([]models.ActivityEntry{}, next...)
	return nil
}

func (m *memStore) GetSession(context.Context) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *memStore) SetSession(_ context.Context, user models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = &user
	return nil
}

func (m *memStore) ClearSession(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = nil
	return nil
}

func (m *memStore) ClearAll(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = nil
	m.docs = nil
	m.activity = nil
	m.session = nil
	m.clearAllCalls++
	return nil
}

// noopActivity satisfies activityRecorder when the trail is irrelevant.
type noopActivity struct {
	mu      sync.Mutex
	entries []string
}

func (n *noopActivity) Record(_ context.Context, action, userName, details string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, action+"|"+userName+"|"+details)
	return nil
}
