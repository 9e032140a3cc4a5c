package export

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/banshee-data/haptics/internal/fsutil"
	"github.com/banshee-data/haptics/internal/recording"
	"github.com/banshee-data/haptics/internal/recording/store"
)

// Format is an output format.
type Format int

const (
	CSV Format = iota
	SQLite
	PNG
	HTML
)

func (f Format) String() string {
	switch f {
	case SQLite:
		return "sqlite"
	case PNG:
		return "png"
	case HTML:
		return "html"
	default:
		return "csv"
	}
}

// FormatFor picks the format from the file extension. Anything unknown,
// including .log, is CSV.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return SQLite
	case ".png":
		return PNG
	case ".html", ".htm":
		return HTML
	default:
		return CSV
	}
}

// Save writes b to path in the format chosen by its extension. File formats
// go through fsys; the sqlite store always uses the real filesystem.
func Save(ctx context.Context, fsys fsutil.FileSystem, b *recording.Buffer, path string) error {
	format := FormatFor(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	if format == SQLite {
		s, err := store.Open(path)
		if err != nil {
			return err
		}
		defer s.Close()
		return s.Save(ctx, b)
	}

	var write func(io.Writer, *recording.Buffer) error
	switch format {
	case PNG:
		write = WritePNG
	case HTML:
		write = WriteHTML
	default:
		write = WriteCSV
	}

	f, err := fsys.Create(path)
	if err != nil {
		return err
	}
	if err := write(f, b); err != nil {
		f.Close()
		return fmt.Errorf("write %s %s: %w", format, path, err)
	}
	return f.Close()
}

// Load reads a recording from a CSV file or the most recent recording of a
// sqlite store.
func Load(ctx context.Context, fsys fsutil.FileSystem, path string) (*recording.Buffer, error) {
	switch FormatFor(path) {
	case SQLite:
		s, err := store.Open(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		list, err := s.List(ctx)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%s: %w", path, store.ErrNotFound)
		}
		return s.Load(ctx, list[len(list)-1].ID)
	case CSV:
		f, err := fsys.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return ReadCSV(f)
	default:
		return nil, fmt.Errorf("cannot read recordings from %s", path)
	}
}
