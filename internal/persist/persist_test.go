package persist

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_Verbatim(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clixo.out")
	raw := []byte("# header\nA\tB\n\x00binary-safe\n")

	require.NoError(t, Write(path, raw))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, raw, got)
}

func TestWrite_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no", "such", "dir", "out.tsv")

	err := Write(path, []byte("x"))
	require.Error(t, err)

	var pe *Error
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "write", pe.Op)
	assert.Equal(t, path, pe.Path)
}
