package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// FormatError reports that the input bytes are not a readable archive.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("archive format: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

type Options struct {
	// Extensions recognized as data files, e.g. ".csv". Case-insensitive.
	Extensions []string
	// RequireSuffix, when set, keeps only members whose stem ends with it
	// (e.g. "_rotmod"), compared case-insensitively.
	RequireSuffix string
	// MaxMemberBytes caps the decompressed size read from one member.
	MaxMemberBytes int64
}

type Reader struct {
	extensions    []string
	requireSuffix string
	maxBytes      int64
}

func NewReader(opts Options) *Reader {
	exts := make([]string, 0, len(opts.Extensions))
	for _, e := range opts.Extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	return &Reader{
		extensions:    exts,
		requireSuffix: strings.ToLower(opts.RequireSuffix),
		maxBytes:      opts.MaxMemberBytes,
	}
}

func (r *Reader) Extensions() []string {
	return append([]string(nil), r.extensions...)
}

// Member is one data file inside an opened archive.
type Member struct {
	Name string

	file     *zip.File
	maxBytes int64
}

// Open lists the data members of a ZIP archive held in memory, sorted
// case-insensitively by full path. No matching members is not an error.
func (r *Reader) Open(data []byte) ([]Member, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &FormatError{Err: err}
	}

	var members []Member
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		ext, ok := r.matchExtension(f.Name)
		if !ok {
			continue
		}
		if r.requireSuffix != "" {
			base := strings.ToLower(path.Base(f.Name))
			if !strings.HasSuffix(base[:len(base)-len(ext)], r.requireSuffix) {
				continue
			}
		}
		members = append(members, Member{Name: f.Name, file: f, maxBytes: r.maxBytes})
	}

	sort.SliceStable(members, func(i, j int) bool {
		a, b := strings.ToLower(members[i].Name), strings.ToLower(members[j].Name)
		if a != b {
			return a < b
		}
		return members[i].Name < members[j].Name
	})
	return members, nil
}

func (r *Reader) matchExtension(name string) (string, bool) {
	lower := strings.ToLower(name)
	for _, e := range r.extensions {
		if strings.HasSuffix(lower, e) {
			return e, true
		}
	}
	return "", false
}

// Stem derives a galaxy identifier from a member path: directory and
// recognized extension are removed, then a trailing "_rotmod".
func (r *Reader) Stem(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if ext, ok := r.matchExtension(base); ok {
		base = base[:len(base)-len(ext)]
	}
	const suffix = "_rotmod"
	if len(base) > len(suffix) && strings.EqualFold(base[len(base)-len(suffix):], suffix) {
		base = base[:len(base)-len(suffix)]
	}
	return base
}

// ReadText decompresses the member and decodes it to a string. A UTF-8 BOM
// is dropped; bytes that are not valid UTF-8 are read as Windows-1252.
func (m Member) ReadText() (string, error) {
	if m.file == nil {
		return "", fmt.Errorf("member %s: not backed by an archive", m.Name)
	}
	rc, err := m.file.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", m.Name, err)
	}
	defer rc.Close()

	var src io.Reader = rc
	if m.maxBytes > 0 {
		src = io.LimitReader(rc, m.maxBytes+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", m.Name, err)
	}
	if m.maxBytes > 0 && int64(len(raw)) > m.maxBytes {
		return "", fmt.Errorf("member %s exceeds %d bytes", m.Name, m.maxBytes)
	}
	return decodeText(raw)
}

func decodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
