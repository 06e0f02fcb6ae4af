package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirror_WritesInOrder(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	m := NewMirror(store, 16, nil)

	m.RoomSaved(&RoomData{ID: "abc", State: "filling"})
	m.RoomSaved(&RoomData{ID: "abc", State: "active"})
	m.GameStarted("abc")
	m.DiceRolled(3)
	m.RoomDeleted("abc")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, m.Close(ctx))

	assert.False(t, mr.Exists("room:abc"))

	stats, err := store.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.GamesStarted)
	assert.Equal(t, int64(1), stats.DiceRolls["3"])
}

func TestMirror_LastSnapshotWins(t *testing.T) {
	t.Parallel()

	store, _ := newTestRedisStore(t)
	m := NewMirror(store, 16, nil)

	m.RoomSaved(&RoomData{ID: "abc", State: "filling"})
	m.RoomSaved(&RoomData{ID: "abc", State: "active"})
	require.NoError(t, m.Close(context.Background()))

	loaded, err := store.LoadRoom(context.Background(), "abc")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "active", loaded.State)
}

func TestMirror_EnqueueAfterCloseIsDropped(t *testing.T) {
	t.Parallel()

	store, mr := newTestRedisStore(t)
	m := NewMirror(store, 4, nil)
	require.NoError(t, m.Close(context.Background()))

	assert.NotPanics(t, func() {
		m.RoomSaved(&RoomData{ID: "late"})
	})
	// Closing twice is safe
	assert.NoError(t, m.Close(context.Background()))
	assert.False(t, mr.Exists("room:late"))
}
