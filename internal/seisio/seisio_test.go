package seisio

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatsRoundTrip(t *testing.T) {
	data := []float64{0, 1.5, -2.25, 3e6, -1e-6}

	var buf bytes.Buffer
	require.NoError(t, WriteFloats(&buf, data))
	assert.Equal(t, 4*len(data), buf.Len())

	got := make([]float64, len(data))
	require.NoError(t, ReadFloats(&buf, got))
	for i := range data {
		assert.InDelta(t, data[i], got[i], 1e-6*(1+data[i]*data[i]))
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shots.bin")

	hdr := Header{"label1": "Time"}
	hdr.PutInt("n1", 1500)
	hdr.PutFloat("d1", 0.0015)

	require.NoError(t, WriteHeader(path, hdr))

	got, err := ReadHeader(path)
	require.NoError(t, err)

	n1, err := got.Int("n1")
	require.NoError(t, err)
	assert.Equal(t, 1500, n1)

	d1, err := got.Float("d1")
	require.NoError(t, err)
	assert.Equal(t, 0.0015, d1)

	assert.Equal(t, "Time", got["label1"])

	_, err = got.Int("missing")
	assert.Error(t, err)
}

func TestHeaderIgnoresCommentsAndBlanks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "v.bin")
	content := "# grid shape\nn1=10\n\nn2 = 20\n"
	require.NoError(t, os.WriteFile(HeaderPath(path), []byte(content), 0644))

	hdr, err := ReadHeader(path)
	require.NoError(t, err)
	n1, _ := hdr.Int("n1")
	n2, _ := hdr.Int("n2")
	assert.Equal(t, 10, n1)
	assert.Equal(t, 20, n2)
}

func TestReadVelocity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vinit.bin")

	const nz, nx = 4, 3
	data := make([]float64, nz*nx)
	for i := range data {
		data[i] = 2000 + float64(i)
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteFloats(f, data))
	require.NoError(t, f.Close())

	hdr := Header{}
	hdr.PutInt("n1", nz)
	hdr.PutInt("n2", nx)
	hdr.PutFloat("d1", 10)
	hdr.PutFloat("d2", 10)
	require.NoError(t, WriteHeader(path, hdr))

	got, gotHdr, err := ReadVelocity(path)
	require.NoError(t, err)
	require.Len(t, got, nz*nx)
	for i := range data {
		assert.InDelta(t, data[i], got[i], 1e-3)
	}
	d1, err := gotHdr.Float("d1")
	require.NoError(t, err)
	assert.Equal(t, 10.0, d1)
}

func TestReadVelocityMissingShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vinit.bin")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	require.NoError(t, WriteHeader(path, Header{"d1": "10"}))

	_, _, err := ReadVelocity(path)
	assert.Error(t, err)
}

func TestVelocityWriterAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vupdates.bin")

	const nz, nx = 3, 2
	w, err := NewVelocityWriter(path, nz, nx, 10, 10)
	require.NoError(t, err)

	frame1 := []float64{1, 2, 3, 4, 5, 6}
	frame2 := []float64{10, 20, 30, 40, 50, 60}
	require.NoError(t, w.Append(frame1))
	require.NoError(t, w.Append(frame2))
	require.NoError(t, w.Close())

	hdr, err := ReadHeader(path)
	require.NoError(t, err)
	n3, err := hdr.Int("n3")
	require.NoError(t, err)
	assert.Equal(t, 2, n3)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got := make([]float64, 12)
	require.NoError(t, ReadFloats(f, got))
	assert.InDelta(t, 6.0, got[5], 1e-6)
	assert.InDelta(t, 10.0, got[6], 1e-6)
}
