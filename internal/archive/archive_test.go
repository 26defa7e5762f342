package archive

import (
	"archive/tar"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, data []byte) map[string]string {
	t.Helper()

	gz, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer gz.Close()

	files := map[string]string{}
	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)

		content, err := io.ReadAll(tr)
		require.NoError(t, err)
		files[hdr.Name] = string(content)
	}
	return files
}

func TestPack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "parcel.yaml"), []byte("name: toolkit\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "main.go"), []byte("package main\n"), 0644))

	data, err := Pack(dir)
	require.NoError(t, err)

	files := extract(t, data)
	require.Len(t, files, 2)
	assert.Equal(t, "name: toolkit\n", files["parcel.yaml"])
	assert.Equal(t, "package main\n", files["src/main.go"])
}

func TestPackEmptyDir(t *testing.T) {
	data, err := Pack(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, extract(t, data))
}

func TestPackSkipsIrregularFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("keep"), 0644))
	require.NoError(t, os.Symlink(filepath.Join(dir, "keep.txt"), filepath.Join(dir, "link.txt")))

	data, err := Pack(dir)
	require.NoError(t, err)

	files := extract(t, data)
	require.Len(t, files, 1)
	assert.Contains(t, files, "keep.txt")
}

func TestPackErrors(t *testing.T) {
	t.Run("missing directory", func(t *testing.T) {
		_, err := Pack(filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
	})

	t.Run("not a directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := Pack(file)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})
}
