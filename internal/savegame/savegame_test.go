package savegame

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/keymaster/internal/catalog"
	"github.com/verte-zerg/keymaster/internal/economy"
)

type memKV struct {
	data   map[string][]byte
	getErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	b, ok := m.data[key]
	return b, ok, nil
}

func (m *memKV) Put(_ context.Context, key string, blob []byte) error {
	m.data[key] = append([]byte(nil), blob...)
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

var start = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func newEngine() *economy.Engine {
	return economy.NewWithClock(catalog.Default(), func() time.Time { return start })
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cat := catalog.Default()
	e := newEngine()
	e.Restore(economy.State{
		CurrentPresses:   1234.75,
		LifetimePresses:  98765.5,
		ManualPressCount: 2345,
		UnlockedKeys:     []string{" ", "w", "a", "s", "d", "q", "e"},
		OwnedUpgrades: []economy.OwnedUpgrade{
			{ID: catalog.MechanicalSwitch, Count: 4},
			{ID: catalog.RGBLighting, Count: 2},
			{ID: catalog.ServerBot, Count: 1},
		},
		UnlockedAchievements: []string{"start", "hundred", "keyboard_warrior"},
		StartedAt:            start,
	})
	want := e.Snapshot()

	data, err := Encode(want, e.Stats(), Meta{InstallID: "abc", SavedAt: start.Add(time.Hour)})
	require.NoError(t, err)

	got, meta, err := Decode(data, cat)
	require.NoError(t, err)
	assert.Equal(t, CurrentVersion, meta.Version)
	assert.Equal(t, "abc", meta.InstallID)
	assert.True(t, meta.SavedAt.Equal(start.Add(time.Hour)))

	restored := newEngine()
	restored.Restore(got)
	assert.Equal(t, want, restored.Snapshot())
	assert.Equal(t, e.Stats(), restored.Stats())
}

func TestEncodeFieldNames(t *testing.T) {
	e := newEngine()
	e.RegisterManualPress()
	data, err := Encode(e.Snapshot(), e.Stats(), Meta{})
	require.NoError(t, err)

	var raw struct {
		Version int            `json:"version"`
		State   map[string]any `json:"state"`
		Stats   map[string]any `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 2, raw.Version)
	for _, field := range []string{"presses", "lifetimePresses", "manualPresses", "unlockedKeys", "upgradesOwned", "achievementsUnlocked", "startTime"} {
		assert.Contains(t, raw.State, field)
	}
	for _, field := range []string{"totalPresses", "currentPPS", "clickValue", "multiplier"} {
		assert.Contains(t, raw.Stats, field)
	}
	assert.Equal(t, float64(start.UnixMilli()), raw.State["startTime"])
}

func TestDecodeVersionOneBlob(t *testing.T) {
	legacy := `{
		"state": {
			"presses": 150,
			"lifetimePresses": 400,
			"pps": 1,
			"clickValue": 2,
			"multiplier": 1,
			"startTime": 1700000000000,
			"upgradesOwned": [{"id": "mechanical_switch", "count": 1}, {"id": "auto_clicker", "count": 1}],
			"achievementsUnlocked": ["start", "hundred"]
		},
		"stats": {"totalPresses": 400, "currentPPS": 1, "maxPPS": 3}
	}`

	state, meta, err := Decode([]byte(legacy), catalog.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, meta.Version)
	assert.Zero(t, state.ManualPressCount)
	assert.Equal(t, []string{" ", "w", "a", "s", "d"}, state.UnlockedKeys)

	e := newEngine()
	e.Restore(state)
	assert.Equal(t, 150.0, e.CurrentPresses())
	assert.Equal(t, 1, e.Owned(catalog.AutoClicker))
	assert.Zero(t, e.Owned(catalog.GoldenCaps))
	assert.Equal(t, 1.0, e.Stats().PassiveRate)
	assert.Equal(t, 2.0, e.Stats().ClickValue)
	assert.True(t, e.Snapshot().StartedAt.Equal(time.UnixMilli(1700000000000)))
}

func TestDecodeIgnoresCachedStats(t *testing.T) {
	blob := `{"version":2,"state":{"presses":10,"lifetimePresses":10},"stats":{"clickValue":999,"currentPPS":999,"multiplier":50}}`
	state, _, err := Decode([]byte(blob), catalog.Default())
	require.NoError(t, err)

	e := newEngine()
	e.Restore(state)
	assert.Equal(t, economy.Stats{ClickValue: 1, PassiveRate: 0, Multiplier: 1}, e.Stats())
}

func TestDecodeCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":      `{"state":`,
		"missing state": `{"version":2}`,
		"wrong type":    `{"state":{"presses":"lots"}}`,
		"array":         `[]`,
	}
	for name, blob := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := Decode([]byte(blob), catalog.Default())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorrupt))
		})
	}
}

func TestAdapterSaveLoad(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	a := NewAdapter(kv, "default", nil)

	e := newEngine()
	for i := 0; i < 20; i++ {
		e.RegisterManualPress()
	}
	require.True(t, e.PurchaseUpgrade(catalog.MechanicalSwitch))
	require.NoError(t, a.Save(ctx, e))

	loaded := newEngine()
	ok, err := NewAdapter(kv, "default", nil).Load(ctx, loaded)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, e.Snapshot(), loaded.Snapshot())
	assert.Equal(t, e.Stats(), loaded.Stats())
}

func TestAdapterKeepsInstallID(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	first := NewAdapter(kv, "default", nil)
	require.NoError(t, first.Save(ctx, newEngine()))
	id := first.InstallID()
	require.NotEmpty(t, id)

	second := NewAdapter(kv, "default", nil)
	_, err := second.Load(ctx, newEngine())
	require.NoError(t, err)
	assert.Equal(t, id, second.InstallID())
}

func TestAdapterResetIssuesNewInstallID(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	a := NewAdapter(kv, "default", nil)
	e := newEngine()
	require.NoError(t, a.Save(ctx, e))
	before := a.InstallID()

	require.NoError(t, a.Reset(ctx, e))
	require.NoError(t, a.Save(ctx, e))
	data, ok, err := kv.Get(ctx, "default")
	require.NoError(t, err)
	require.True(t, ok)
	_, meta, err := Decode(data, e.Catalog())
	require.NoError(t, err)
	assert.NotEmpty(t, meta.InstallID)
	assert.NotEqual(t, before, meta.InstallID)
}

func TestAdapterLoadMissing(t *testing.T) {
	e := newEngine()
	e.ApplyPresses(10)
	ok, err := NewAdapter(newMemKV(), "default", nil).Load(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, e.CurrentPresses())
}

func TestAdapterLoadCorruptLogsAndResets(t *testing.T) {
	kv := newMemKV()
	kv.data["default"] = []byte("{{{")
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	e := newEngine()
	e.ApplyPresses(10)
	ok, err := NewAdapter(kv, "default", log).Load(context.Background(), e)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Zero(t, e.LifetimePresses())
	assert.Contains(t, buf.String(), "Ignoring corrupt save")
	assert.Contains(t, buf.String(), "slot=default")
}

func TestAdapterLoadReadError(t *testing.T) {
	kv := newMemKV()
	kv.getErr = errors.New("disk on fire")
	_, err := NewAdapter(kv, "default", nil).Load(context.Background(), newEngine())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestAdapterResetExportImport(t *testing.T) {
	ctx := context.Background()
	kv := newMemKV()
	a := NewAdapter(kv, "default", nil)

	_, err := a.Export(ctx)
	assert.ErrorIs(t, err, ErrNoSave)

	e := newEngine()
	e.ApplyPresses(500)
	require.NoError(t, a.Save(ctx, e))
	exported, err := a.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, a.Reset(ctx, e))
	assert.Zero(t, e.CurrentPresses())
	_, ok, _ := kv.Get(ctx, "default")
	assert.False(t, ok)

	other := NewAdapter(kv, "other", nil)
	imported := newEngine()
	require.NoError(t, other.Import(ctx, exported, imported))
	assert.Equal(t, 500.0, imported.CurrentPresses())
	_, ok, _ = kv.Get(ctx, "other")
	assert.True(t, ok)

	err = other.Import(ctx, []byte("nope"), imported)
	assert.True(t, IsCorrupt(err))
	assert.Equal(t, 500.0, imported.CurrentPresses())
}
