package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusdocs/admp-api/internal/models"
)

func TestRecordPrependsNewestFirst(t *testing.T) {
	store := &memStore{}
	svc := NewActivityService(store, nil)

	require.NoError(t, svc.Record(context.Background(), models.ActivityLogin, "Anita", "first"))
	require.NoError(t, svc.Record(context.Background(), models.ActivityUpload, "Anita", "second"))

	require.Len(t, store.activity, 2)
	assert.Equal(t, "second", store.activity[0].Details)
	assert.Equal(t, "first", store.activity[1].Details)
	assert.NotEmpty(t, store.activity[0].ID)
}

func TestRecordEvictsOldestBeyondCap(t *testing.T) {
	store := &memStore{}
	svc := NewActivityService(store, nil)

	for i := 0; i < models.MaxActivityEntries+1; i++ {
		require.NoError(t, svc.Record(context.Background(), models.ActivityUpload, "Anita", fmt.Sprintf("entry-%d", i)))
	}

	require.Len(t, store.activity, models.MaxActivityEntries)
	assert.Equal(t, fmt.Sprintf("entry-%d", models.MaxActivityEntries), store.activity[0].Details)
	// entry-0 was the oldest and is gone.
	assert.Equal(t, "entry-1", store.activity[models.MaxActivityEntries-1].Details)
}

func TestListHonorsLimit(t *testing.T) {
	store := &memStore{}
	svc := NewActivityService(store, nil)

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.Record(context.Background(), models.ActivityUpdate, "Anita", fmt.Sprintf("entry-%d", i)))
	}

	entries, err := svc.List(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "entry-9", entries[0].Details)

	all, err := svc.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 10)
}
