package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keymaster/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "keymaster.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return st
}

func TestSaveSlotRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	_, ok, err := st.Get(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, st.Put(ctx, "default", []byte(`{"a":1}`)))
	require.NoError(t, st.Put(ctx, "default", []byte(`{"a":2}`)))
	require.NoError(t, st.Put(ctx, "other", []byte(`{}`)))

	blob, ok, err := st.Get(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"a":2}`, string(blob))

	saves, err := st.ListSaves(ctx)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, "default", saves[0].Slot)
	assert.Equal(t, 7, saves[0].Size)

	require.NoError(t, st.Delete(ctx, "default"))
	require.NoError(t, st.Delete(ctx, "missing"))
	_, ok, err = st.Get(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChallengeHistory(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	records := []model.ChallengeRecord{
		{ID: uuid.NewString(), Slot: "default", Kind: "speed", Score: 40, Reward: 400, StartedAt: base, EndedAt: base.Add(10 * time.Second)},
		{ID: uuid.NewString(), Slot: "default", Kind: "reaction", Score: 12, Reward: 300, StartedAt: base.Add(time.Minute), EndedAt: base.Add(time.Minute + 15*time.Second)},
		{ID: uuid.NewString(), Slot: "other", Kind: "speed", Score: 3, Reward: 30, StartedAt: base, EndedAt: base.Add(10 * time.Second)},
	}
	for _, rec := range records {
		require.NoError(t, st.InsertChallenge(ctx, rec))
	}

	got, err := st.ListChallenges(ctx, model.StatsConfig{Slot: "default"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "speed", got[0].Kind)
	assert.Equal(t, 300.0, got[1].Reward)
	assert.True(t, got[1].EndedAt.Equal(base.Add(time.Minute+15*time.Second)))

	got, err = st.ListChallenges(ctx, model.StatsConfig{Kind: "speed"})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	since := base.Add(30 * time.Second)
	got, err = st.ListChallenges(ctx, model.StatsConfig{Slot: "default", Since: &since})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].Score)

	err = st.InsertChallenge(ctx, model.ChallengeRecord{Slot: "default"})
	assert.Error(t, err)
}

func TestResetSlot(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, st.Put(ctx, "default", []byte("x")))
	require.NoError(t, st.Put(ctx, "keep", []byte("y")))
	require.NoError(t, st.InsertChallenge(ctx, model.ChallengeRecord{ID: uuid.NewString(), Slot: "default", Kind: "speed", StartedAt: now, EndedAt: now}))
	require.NoError(t, st.InsertChallenge(ctx, model.ChallengeRecord{ID: uuid.NewString(), Slot: "keep", Kind: "speed", StartedAt: now, EndedAt: now}))

	require.NoError(t, st.ResetSlot(ctx, "default"))

	_, ok, err := st.Get(ctx, "default")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = st.Get(ctx, "keep")
	require.NoError(t, err)
	assert.True(t, ok)

	all, err := st.ListChallenges(ctx, model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "keep", all[0].Slot)
}
