package logger

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

var _ io.WriteCloser = (*Rotator)(nil)

const backupTimeFormat = "20060102T150405.000"

// Rotator is an io.WriteCloser over a log file that is moved aside once it
// grows past MaxSizeMB. Backups are named <base>-<timestamp><ext>, optionally
// gzipped, and only the newest MaxBackups are kept.
type Rotator struct {
	Filename   string
	MaxSizeMB  int // 0 means 10
	MaxBackups int // 0 keeps all
	Compress   bool

	maxBytes int64 // overrides MaxSizeMB when set
	file     *os.File
	size     int64
	mu       sync.Mutex
	wg       sync.WaitGroup
}

func (r *Rotator) limit() int64 {
	switch {
	case r.maxBytes > 0:
		return r.maxBytes
	case r.MaxSizeMB > 0:
		return int64(r.MaxSizeMB) << 20
	default:
		return 10 << 20
	}
}

// Write appends p to the current file, rotating first if p would cross the size limit.
func (r *Rotator) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file == nil {
		if err := r.open(); err != nil {
			return 0, err
		}
	}
	if r.size > 0 && r.size+int64(len(p)) > r.limit() {
		if err := r.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := r.file.Write(p)
	r.size += int64(n)
	return n, err
}

// Close closes the current file and waits for background compression.
func (r *Rotator) Close() error {
	r.mu.Lock()
	var err error
	if r.file != nil {
		err = r.file.Close()
		r.file = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
	return err
}

func (r *Rotator) open() error {
	if err := os.MkdirAll(filepath.Dir(r.Filename), 0755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}
	f, err := os.OpenFile(r.Filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	r.file = f
	r.size = info.Size()
	return nil
}

func (r *Rotator) rotate() error {
	if err := r.file.Close(); err != nil {
		return err
	}
	r.file = nil

	backup := r.backupName(time.Now())
	if err := os.Rename(r.Filename, backup); err != nil {
		return fmt.Errorf("failed to move log file aside: %w", err)
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if r.Compress {
			if err := gzipFile(backup); err == nil {
				os.Remove(backup)
			}
		}
		r.prune()
	}()

	return r.open()
}

func (r *Rotator) backupName(t time.Time) string {
	ext := filepath.Ext(r.Filename)
	base := strings.TrimSuffix(r.Filename, ext)
	return fmt.Sprintf("%s-%s%s", base, t.Format(backupTimeFormat), ext)
}

// backups lists existing backups, oldest first.
func (r *Rotator) backups() []string {
	dir := filepath.Dir(r.Filename)
	ext := filepath.Ext(r.Filename)
	prefix := strings.TrimSuffix(filepath.Base(r.Filename), ext) + "-"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		stamp := strings.TrimSuffix(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".gz"), ext)
		if _, err := time.Parse(backupTimeFormat, stamp); err != nil {
			continue
		}
		names = append(names, filepath.Join(dir, name))
	}
	// The timestamp format sorts lexically.
	sort.Strings(names)
	return names
}

func (r *Rotator) prune() {
	if r.MaxBackups <= 0 {
		return
	}
	names := r.backups()
	for len(names) > r.MaxBackups {
		os.Remove(names[0])
		names = names[1:]
	}
}

func gzipFile(src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(src + ".gz")
	if err != nil {
		return err
	}
	defer out.Close()

	zw := gzip.NewWriter(out)
	if _, err := io.Copy(zw, in); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}
