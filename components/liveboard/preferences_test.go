package liveboard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryPreferenceStoreMergesValues(t *testing.T) {
	store := NewInMemoryPreferenceStore()
	ctx := context.Background()

	prefs, err := store.Preferences(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, prefs.Values)

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, store.SavePreferences(ctx, "", Preferences{
		Values:    map[string]any{"theme": "dark", "language": "en"},
		Context:   "initial setup",
		UpdatedAt: at,
	}))
	require.NoError(t, store.SavePreferences(ctx, DefaultProfile, Preferences{
		Values:    map[string]any{"language": "es"},
		UpdatedAt: at.Add(time.Hour),
	}))

	prefs, err = store.Preferences(ctx, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"theme": "dark", "language": "es"}, prefs.Values)
	assert.Equal(t, "initial setup", prefs.Context)
	assert.Equal(t, at.Add(time.Hour), prefs.UpdatedAt)

	prefs.Values["theme"] = "light"
	again, err := store.Preferences(ctx, DefaultProfile)
	require.NoError(t, err)
	assert.Equal(t, "dark", again.Values["theme"], "reads must not alias stored values")

	other, err := store.Preferences(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, other.Values)
}

func TestInMemoryPreferenceStoreRejectsNilValues(t *testing.T) {
	err := NewInMemoryPreferenceStore().SavePreferences(context.Background(), "ops", Preferences{})
	assert.Error(t, err)
}
