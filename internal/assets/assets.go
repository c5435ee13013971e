// Package assets provides the read-only store that requested paths are
// resolved against.
package assets

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

// Kind tells callers how an Open failure should be reported.
type Kind int

const (
	// NotFound means there is no asset under the requested name.
	NotFound Kind = iota + 1
	// IOFailure means the asset exists but could not be opened.
	IOFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case IOFailure:
		return "io failure"
	default:
		return "unknown"
	}
}

// ErrNotFound matches every OpenError of kind NotFound.
var ErrNotFound = errors.New("asset not found")

type OpenError struct {
	Name string
	Kind Kind
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open asset %q: %s: %v", e.Name, e.Kind, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

func (e *OpenError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == NotFound
}

// KindOf returns the Kind carried by err. Errors that did not come from a
// Store are treated as IOFailure; a nil error has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var oe *OpenError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return IOFailure
}

// Store opens assets by slash-separated relative name.
type Store interface {
	Open(name string) (io.ReadCloser, error)
}

// FS is a Store backed by a billy filesystem. It is safe for concurrent use
// as long as nothing else writes to the filesystem.
type FS struct {
	fs billy.Filesystem
}

func NewFS(bfs billy.Filesystem) *FS {
	return &FS{fs: bfs}
}

// NewDir returns a Store rooted at dir on the local disk.
func NewDir(dir string) *FS {
	return NewFS(osfs.New(dir))
}

func (s *FS) Open(name string) (io.ReadCloser, error) {
	clean := strings.TrimPrefix(path.Clean("/"+name), "/")
	if clean == "" {
		return nil, &OpenError{Name: name, Kind: NotFound, Err: fs.ErrNotExist}
	}

	fi, err := s.fs.Stat(clean)
	if err != nil {
		return nil, classify(name, err)
	}
	if fi.IsDir() {
		return nil, &OpenError{Name: name, Kind: NotFound, Err: errors.New("is a directory")}
	}

	f, err := s.fs.Open(clean)
	if err != nil {
		return nil, classify(name, err)
	}
	return f, nil
}

func classify(name string, err error) error {
	kind := IOFailure
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, billy.ErrCrossedBoundary) {
		kind = NotFound
	}
	return &OpenError{Name: name, Kind: kind, Err: err}
}
