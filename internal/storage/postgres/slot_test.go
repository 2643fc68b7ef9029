package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survivor/internal/config"
	"github.com/cory-johannsen/survivor/internal/game/cooldown"
	"github.com/cory-johannsen/survivor/internal/game/dice"
	"github.com/cory-johannsen/survivor/internal/game/world"
	"github.com/cory-johannsen/survivor/internal/persistence"
	"github.com/cory-johannsen/survivor/internal/testutil"
)

func TestSlotStore_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()

	require.NoError(t, pc.Store.Health(ctx, 5*time.Second))

	alpha := pc.Store.Slot("alpha")
	beta := pc.Store.Slot("beta")

	t.Run("missing slot reads empty", func(t *testing.T) {
		data, err := alpha.Read(ctx)
		require.NoError(t, err)
		assert.Empty(t, data)
	})

	t.Run("write then read", func(t *testing.T) {
		require.NoError(t, alpha.Write(ctx, []byte(`{"timer": 1}`)))
		data, err := alpha.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"timer": 1}`, string(data))
	})

	t.Run("write overwrites", func(t *testing.T) {
		require.NoError(t, alpha.Write(ctx, []byte(`{"timer": 2}`)))
		data, err := alpha.Read(ctx)
		require.NoError(t, err)
		assert.JSONEq(t, `{"timer": 2}`, string(data))
	})

	t.Run("slots are listed in order", func(t *testing.T) {
		require.NoError(t, beta.Write(ctx, []byte(`{}`)))
		slots, err := pc.Store.Slots(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "beta"}, slots)
	})
}

func TestSlotStore_GameRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	pc := testutil.NewPostgresContainer(t)
	ctx := context.Background()
	dao := persistence.NewGameDAO(pc.Store.Slot("default"), zap.NewNop())

	newWorld := func() *world.GameWorld {
		w, err := world.New(config.Default().Game(), cooldown.NewManualClock(time.Unix(0, 0)), dice.NewSeededSource(7), nil, zap.NewNop())
		require.NoError(t, err)
		return w
	}

	saved := newWorld()
	for range 5 {
		saved.Update()
	}
	require.NoError(t, dao.SaveGame(ctx, saved))

	restored := newWorld()
	require.NoError(t, dao.LoadGame(ctx, restored))

	want, err := persistence.Encode(persistence.Capture(saved))
	require.NoError(t, err)
	got, err := persistence.Encode(persistence.Capture(restored))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	require.NoError(t, dao.ClearSave(ctx))
	has, err := dao.HasSavedGameData(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}
