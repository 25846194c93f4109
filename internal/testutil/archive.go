// archive.go - In-memory adventure archives for testing
package testutil

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// Entry is one member of a test archive.
type Entry struct {
	Name string
	Data []byte
}

// BuildArchive zips entries in order.
func BuildArchive(t testing.TB, entries ...Entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("creating %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("writing %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing archive: %v", err)
	}
	return buf.Bytes()
}

// WriteArchive writes an archive of entries into dir and returns its path.
func WriteArchive(t testing.TB, dir, name string, entries ...Entry) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildArchive(t, entries...), 0644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}

// ReadArchive returns the entries of a zip archive in stored order.
func ReadArchive(t testing.TB, data []byte) []Entry {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	entries := make([]Entry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		entries = append(entries, Entry{Name: f.Name, Data: content})
	}
	return entries
}

// ReadArchiveFile reads the archive stored at path.
func ReadArchiveFile(t testing.TB, path string) []Entry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return ReadArchive(t, data)
}

// Lookup returns the entry named name.
func Lookup(entries []Entry, name string) (Entry, bool) {
	for _, e := range entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}
