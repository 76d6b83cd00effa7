package archive

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/newthinker/cryptosignals/internal/core"
)

const snapshotRoot = "snapshots"

// Snapshots archives raw feed bodies under snapshots/YYYY/MM/DD/<nanos>.json.
type Snapshots struct {
	storage Storage
	now     func() time.Time
}

// NewSnapshots wraps a storage backend.
func NewSnapshots(storage Storage) *Snapshots {
	return &Snapshots{storage: storage, now: time.Now}
}

// Archive writes one snapshot.
func (s *Snapshots) Archive(ctx context.Context, body []byte) error {
	if err := s.storage.Write(ctx, SnapshotPath(s.now()), body); err != nil {
		return core.WrapError(core.ErrArchiveFailed, err)
	}
	return nil
}

// Day lists the snapshots taken on the given day, oldest first.
func (s *Snapshots) Day(ctx context.Context, day time.Time) ([]string, error) {
	day = day.UTC()
	prefix := fmt.Sprintf("%s/%04d/%02d/%02d", snapshotRoot, day.Year(), day.Month(), day.Day())
	paths, err := s.storage.List(ctx, prefix)
	if err != nil {
		return nil, core.WrapError(core.ErrArchiveFailed, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Read returns a stored snapshot body.
func (s *Snapshots) Read(ctx context.Context, path string) ([]byte, error) {
	data, err := s.storage.Read(ctx, path)
	if err != nil {
		return nil, core.WrapError(core.ErrNotFound, err)
	}
	return data, nil
}

// SnapshotPath returns the storage path for a snapshot taken at t.
func SnapshotPath(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%019d.json", snapshotRoot, t.Year(), t.Month(), t.Day(), t.UnixNano())
}

// Config selects and configures a backend.
type Config struct {
	Type string // "localfs" or "s3"
	Path string
	S3   S3Config
}

// New builds the backend named by cfg.Type.
func New(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "", "localfs":
		return NewLocalFS(cfg.Path)
	case "s3":
		return NewS3(cfg.S3)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown archive type: %s", cfg.Type))
	}
}
