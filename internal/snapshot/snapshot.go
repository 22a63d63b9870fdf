// Package snapshot stores rendered HTML and compares new renders against it.
//
// Two backends exist: DirStore keeps one file per snapshot under a
// directory, S3Store keeps one object per snapshot under a bucket prefix.
// Open picks one from the project configuration.
package snapshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vango-dev/gaugekit/internal/config"
	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
)

// ErrNotFound is returned when a snapshot doesn't exist.
var ErrNotFound = errors.New("snapshot: not found")

// Ext is appended to snapshot names to form file names and object keys.
const Ext = ".html"

// Store persists snapshots by name.
type Store interface {
	// Get returns the stored snapshot or ErrNotFound.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put creates or replaces a snapshot.
	Put(ctx context.Context, name string, data []byte) error

	// List returns all snapshot names, sorted.
	List(ctx context.Context) ([]string, error)
}

// Outcome reports what Compare did.
type Outcome uint8

const (
	// Matched means the stored snapshot equals the render.
	Matched Outcome = iota
	// Created means no snapshot existed and the render was stored.
	Created
	// Updated means the stored snapshot was overwritten.
	Updated
	// Mismatched means the render differs from the stored snapshot.
	Mismatched
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Mismatched:
		return "mismatched"
	default:
		return "unknown"
	}
}

// Compare checks got against the snapshot called name. A missing snapshot
// is stored. With update set a differing snapshot is overwritten instead of
// reported. A mismatch returns an E181 error describing the first differing
// line.
func Compare(ctx context.Context, store Store, name string, got []byte, update bool) (Outcome, error) {
	if err := ValidName(name); err != nil {
		return Mismatched, err
	}
	want, err := store.Get(ctx, name)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := store.Put(ctx, name, got); err != nil {
			return Created, err
		}
		return Created, nil
	case err != nil:
		return Mismatched, err
	}

	if bytes.Equal(normalize(want), normalize(got)) {
		return Matched, nil
	}
	if update {
		return Updated, store.Put(ctx, name, got)
	}
	return Mismatched, gkerrors.New("E181").WithDetail(name + ": " + Diff(want, got))
}

// ValidName rejects names that would escape the store's root.
func ValidName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return gkerrors.New("E180").WithDetail(fmt.Sprintf("invalid snapshot name %q", name))
	}
	return nil
}

// Diff describes the first line where want and got differ.
func Diff(want, got []byte) string {
	wl := strings.Split(string(normalize(want)), "\n")
	gl := strings.Split(string(normalize(got)), "\n")
	for i := 0; i < len(wl) || i < len(gl); i++ {
		var w, g string
		if i < len(wl) {
			w = wl[i]
		}
		if i < len(gl) {
			g = gl[i]
		}
		if w != g {
			return fmt.Sprintf("line %d: want %q, got %q", i+1, w, g)
		}
	}
	return "no difference"
}

func normalize(b []byte) []byte {
	b = bytes.ReplaceAll(b, []byte("\r\n"), []byte("\n"))
	return bytes.TrimRight(b, "\n")
}

// Open returns the store configured for the project.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Snapshots.Backend {
	case "", config.SnapshotDir:
		return NewDirStore(cfg.SnapshotsPath())
	case config.SnapshotS3:
		return NewS3Store(S3Options{
			Bucket:    cfg.Snapshots.Bucket,
			Prefix:    cfg.Snapshots.Prefix,
			Region:    cfg.Snapshots.Region,
			Endpoint:  cfg.Snapshots.Endpoint,
			PathStyle: cfg.Snapshots.PathStyle,
		})
	}
	return nil, gkerrors.New("E123").WithDetail("unknown snapshot backend " + cfg.Snapshots.Backend)
}

func storeError(op, name string, err error) error {
	return gkerrors.New("E180").WithDetail(op + " " + name).Wrap(err)
}
