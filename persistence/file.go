package persistence

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hupe1980/nodefinder/internal/fs"
)

// SaveToFile atomically replaces filename with the output of writeFunc.
//
// The data is written to a temporary file next to filename, synced and
// renamed over the target. On any failure the temporary file is removed and
// the previous content of filename is left untouched.
func SaveToFile(fsys fs.FileSystem, filename string, writeFunc func(io.Writer) error) error {
	if fsys == nil {
		fsys = fs.Default
	}
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)

	tmp, err := fsys.CreateTemp(dir, base+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	closed := false
	defer func() {
		if !closed {
			_ = tmp.Close()
		}
		if tmpName != "" {
			_ = fsys.Remove(tmpName)
		}
	}()

	buf := bufio.NewWriterSize(tmp, 64*1024)
	if err := writeFunc(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	closed = true
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := fsys.Rename(tmpName, filename); err != nil {
		return err
	}
	tmpName = ""

	// Best-effort: fsync the directory so the rename is durable on POSIX.
	if d, err := fsys.OpenFile(dir, os.O_RDONLY, 0); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Save atomically writes doc as a checkpoint file and returns its size.
func Save(fsys fs.FileSystem, filename string, kind Kind, doc *Document, opts Options) (int64, error) {
	var n int64
	err := SaveToFile(fsys, filename, func(w io.Writer) error {
		var err error
		n, err = Encode(w, kind, doc, opts)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("persistence: save %s: %w", filename, err)
	}
	return n, nil
}

// Load reads a checkpoint file.
func Load(fsys fs.FileSystem, filename string) (*Header, *Document, error) {
	if fsys == nil {
		fsys = fs.Default
	}
	f, err := fsys.OpenFile(filename, os.O_RDONLY, 0)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	h, doc, err := Decode(bufio.NewReaderSize(f, 64*1024))
	if err != nil {
		return nil, nil, fmt.Errorf("persistence: load %s: %w", filename, err)
	}
	return h, doc, nil
}
