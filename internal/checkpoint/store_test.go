package checkpoint

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeys(t *testing.T) {
	assert.Equal(t, "check_time_150_1", Key(150, 1))
	assert.Equal(t, "check_time_150_2", Key(150, 2))
	assert.Equal(t, "check_time_last_1", LastKey(1))
	assert.Equal(t, "check_time_last_2", LastKey(2))
}

func TestDirStoreRoundTrip(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	field := make([]float64, 256)
	for i := range field {
		field[i] = math.Sin(float64(i)) * 1e3
	}

	require.NoError(t, store.Save(Key(50, 1), field))

	got := make([]float64, len(field))
	require.NoError(t, store.Load(Key(50, 1), got))

	// The on-disk representation is float32, so the round trip keeps
	// single precision only.
	for i := range field {
		assert.InDelta(t, field[i], got[i], 1e-3)
	}
}

func TestDirStoreMissingKey(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	dst := make([]float64, 8)
	assert.Error(t, store.Load("check_time_999_1", dst))
}

func TestDirStoreBadDir(t *testing.T) {
	_, err := NewDirStore("/definitely/not/a/dir")
	assert.Error(t, err)
}

func TestMemStoreRoundTrip(t *testing.T) {
	store := NewMemStore()
	field := []float64{1, -2, 3.5}

	require.NoError(t, store.Save(LastKey(1), field))

	// Mutating the caller's slice must not leak into the store.
	field[0] = 99

	got := make([]float64, 3)
	require.NoError(t, store.Load(LastKey(1), got))
	assert.Equal(t, []float64{1, -2, 3.5}, got)

	assert.Error(t, store.Load("missing", got))
}
