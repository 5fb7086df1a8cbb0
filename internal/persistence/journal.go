// Event journal: compressed JSON lines, one file per simulated day.
package persistence

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/talgya/castaway/internal/engine"
)

// Journal appends events to <dir>/<prefix>-day-NNNN.jsonl.zst.
type Journal struct {
	dir    string
	prefix string

	mu     sync.Mutex
	curDay uint64
	f      *os.File
	enc    *zstd.Encoder
	w      *bufio.Writer
}

// NewJournal creates a journal writing under dir. Files are opened lazily.
func NewJournal(dir, prefix string) *Journal {
	return &Journal{dir: dir, prefix: prefix}
}

// Write appends one event, rotating to a new file when the day changes.
func (j *Journal) Write(e engine.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	day := engine.DayAt(e.Tick)
	if j.w == nil || day != j.curDay {
		if err := j.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

// Flush pushes buffered lines into the compressor.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.w == nil {
		return nil
	}
	if err := j.w.Flush(); err != nil {
		return err
	}
	return j.enc.Flush()
}

// Close finishes the current file.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.closeLocked()
}

func (j *Journal) rotateLocked(day uint64) error {
	if err := j.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("journal dir: %w", err)
	}
	f, err := os.OpenFile(j.pathForDay(day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	j.f = f
	j.enc = enc
	j.w = bufio.NewWriterSize(enc, 64*1024)
	j.curDay = day
	return nil
}

func (j *Journal) closeLocked() error {
	var errs []error
	if j.w != nil {
		errs = append(errs, j.w.Flush())
	}
	if j.enc != nil {
		errs = append(errs, j.enc.Close())
		j.enc = nil
	}
	if j.f != nil {
		errs = append(errs, j.f.Close())
		j.f = nil
	}
	j.w = nil
	return errors.Join(errs...)
}

func (j *Journal) pathForDay(day uint64) string {
	return filepath.Join(j.dir, fmt.Sprintf("%s-day-%04d.jsonl.zst", j.prefix, day))
}

// Files lists the journal files under dir for prefix in day order.
func Files(dir, prefix string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-day-*.jsonl.zst"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// ReadJournal decodes every event in one journal file.
func ReadJournal(path string) ([]engine.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var events []engine.Event
	jd := json.NewDecoder(dec)
	for {
		var e engine.Event
		if err := jd.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}
			return events, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
		}
		events = append(events, e)
	}
}
