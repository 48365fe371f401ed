package persistence

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/veslink/distmat"
)

// SaveToFile writes a snapshot atomically: the data goes to a temp
// file in the same directory, which is then renamed over the target.
// A crash mid-write never leaves a truncated snapshot behind.
func SaveToFile(ctx context.Context, filename string, m *distmat.Matrix, opts SnapshotOptions) (err error) {
	defer func() { opts.logSnapshot(ctx, filename, err) }()

	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := os.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		if tmpName != "" {
			_ = os.Remove(tmpName)
		}
	}()

	_ = tmp.Chmod(0644)

	// Buffered writer to batch the many small header writes.
	buf := bufio.NewWriterSize(tmp, 256*1024)
	if err := Save(ctx, buf, m, opts); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, filename); err != nil {
		return err
	}
	tmpName = ""

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// LoadFromFile reads a snapshot written by SaveToFile.
func LoadFromFile(filename string) (*distmat.Matrix, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Load(bufio.NewReaderSize(f, 256*1024))
}
