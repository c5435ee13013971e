package assets

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemStore(t *testing.T, files map[string]string) *FS {
	t.Helper()
	mfs := memfs.New()
	for name, body := range files {
		require.NoError(t, util.WriteFile(mfs, name, []byte(body), 0o644))
	}
	return NewFS(mfs)
}

// deniedFS reports every file as present but refuses to open it.
type deniedFS struct {
	billy.Filesystem
}

func (deniedFS) Open(name string) (billy.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func readAll(t *testing.T, rc io.ReadCloser) string {
	t.Helper()
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestOpen(t *testing.T) {
	store := newMemStore(t, map[string]string{
		"index.html":     "<html>index</html>",
		"pkg/eboot.bin":  "\x00\x01\x02",
		"pkg/sce_sys/ok": "ok",
	})

	rc, err := store.Open("index.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>index</html>", readAll(t, rc))

	rc, err = store.Open("pkg/eboot.bin")
	require.NoError(t, err)
	assert.Equal(t, "\x00\x01\x02", readAll(t, rc))
}

func TestOpenNotFound(t *testing.T) {
	store := newMemStore(t, map[string]string{"pkg/eboot.bin": "x"})

	for _, name := range []string{"", "/", "missing.bin", "pkg", "pkg/", "pkg/missing"} {
		_, err := store.Open(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, ErrNotFound, name)
		assert.Equal(t, NotFound, KindOf(err), name)
	}
}

func TestOpenIOFailure(t *testing.T) {
	mfs := memfs.New()
	require.NoError(t, util.WriteFile(mfs, "locked.bin", []byte("x"), 0o644))
	store := NewFS(deniedFS{Filesystem: mfs})

	_, err := store.Open("locked.bin")
	require.Error(t, err)
	assert.Equal(t, IOFailure, KindOf(err))
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, err, fs.ErrPermission)

	var oe *OpenError
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, "locked.bin", oe.Name)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Kind(0), KindOf(nil))
	assert.Equal(t, IOFailure, KindOf(errors.New("boom")))
	assert.Equal(t, "not found", NotFound.String())
	assert.Equal(t, "io failure", IOFailure.String())
}

func TestDirStoreStaysInsideRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "assets")
	require.NoError(t, os.Mkdir(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "index.html"), []byte("inside"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret.txt"), []byte("outside"), 0o644))

	store := NewDir(root)

	rc, err := store.Open("index.html")
	require.NoError(t, err)
	assert.Equal(t, "inside", readAll(t, rc))

	_, err = store.Open("../secret.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}
