// Package archivetest builds in-memory ZIP archives for tests.
package archivetest

import (
	"archive/zip"
	"bytes"
	"testing"
)

type File struct {
	Name string
	Body string
}

// Zip writes files in the given order. Names ending in "/" become
// directory entries.
func Zip(t testing.TB, files ...File) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		w, err := zw.Create(f.Name)
		if err != nil {
			t.Fatalf("zip create %s: %v", f.Name, err)
		}
		if f.Body == "" {
			continue
		}
		if _, err := w.Write([]byte(f.Body)); err != nil {
			t.Fatalf("zip write %s: %v", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
