package sink

import (
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
)

// Local writes files under Dir using a temp file and rename, so a failed
// write never leaves a truncated destination behind.
type Local struct {
	Dir      string      // Base directory for relative names; "" means the working directory.
	PermFile os.FileMode // 0 means 0644.
	PermDir  os.FileMode // 0 means 0755.
}

// Write implements Sink.
func (l *Local) Write(ctx context.Context, name string, r io.Reader, size int64) (string, error) {
	dest := name
	if !filepath.IsAbs(dest) && l.Dir != "" {
		dest = filepath.Join(l.Dir, dest)
	}
	if err := l.writeAtomic(ctx, dest, r); err != nil {
		return dest, &WriteError{Dest: dest, Err: err}
	}
	return dest, nil
}

func (l *Local) writeAtomic(ctx context.Context, dest string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, orDefault(l.PermDir, 0o755)); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".docchunk-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	fail := func(err error) error {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}

	if err := tmp.Chmod(orDefault(l.PermFile, 0o644)); err != nil {
		return fail(err)
	}
	bw := bufio.NewWriterSize(tmp, 64*1024)
	if _, err := io.Copy(bw, &ctxReader{ctx: ctx, r: r}); err != nil {
		return fail(err)
	}
	if err := bw.Flush(); err != nil {
		return fail(err)
	}
	if err := tmp.Sync(); err != nil {
		return fail(err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}

func orDefault(mode, def os.FileMode) os.FileMode {
	if mode == 0 {
		return def
	}
	return mode
}
