package archive

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Fr0z3nRebel/video-toolbox/internal/errors"
)

func writeFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestCreateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.png", 4096)
	b := writeFile(t, dir, "b.png", 1024)
	zipPath := filepath.Join(dir, "out.zip")

	var percents []float64
	err := Create(zipPath, []Entry{
		{Name: "a.png", Path: a},
		{Name: "b.png", Path: b},
	}, func(p float64) { percents = append(percents, p) })
	require.NoError(t, err)

	r, err := zip.OpenReader(zipPath)
	require.NoError(t, err)
	defer r.Close()

	require.Len(t, r.File, 2)
	assert.Equal(t, "a.png", r.File[0].Name)
	assert.Equal(t, "b.png", r.File[1].Name)

	rc, err := r.File[0].Open()
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Len(t, data, 4096)

	require.NotEmpty(t, percents)
	assert.Equal(t, float64(100), percents[len(percents)-1])
	for i := 1; i < len(percents); i++ {
		assert.GreaterOrEqual(t, percents[i], percents[i-1], "progress must not regress")
	}
}

func TestCreateNoEntries(t *testing.T) {
	err := Create(filepath.Join(t.TempDir(), "out.zip"), nil, nil)
	assert.True(t, errors.IsKind(err, errors.KindInvalidOptions))
}

func TestCreateMissingInput(t *testing.T) {
	dir := t.TempDir()
	err := Create(filepath.Join(dir, "out.zip"), []Entry{
		{Name: "gone.png", Path: filepath.Join(dir, "gone.png")},
	}, nil)
	assert.True(t, errors.IsKind(err, errors.KindIO))
}
