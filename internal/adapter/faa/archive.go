package faa

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrMemberNotFound means the archive has no member matching the request.
var ErrMemberNotFound = errors.New("archive member not found")

// MemberMatcher selects a ZIP member by name.
type MemberMatcher func(name string) bool

// SuffixFold matches member names ending in suffix, ignoring case.
func SuffixFold(suffix string) MemberMatcher {
	suffix = strings.ToLower(suffix)
	return func(name string) bool {
		return strings.HasSuffix(strings.ToLower(name), suffix)
	}
}

// BaseNameFold matches members whose base name equals base, ignoring case.
func BaseNameFold(base string) MemberMatcher {
	return func(name string) bool {
		return strings.EqualFold(path.Base(name), base)
	}
}

// LookupEncoding resolves a WHATWG encoding label such as "utf-8" or
// "windows-1252".
func LookupEncoding(label string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}
	return enc, nil
}

// OpenMember opens the first member of the ZIP in data accepted by match
// and decodes it to UTF-8 from enc. Undecodable bytes become U+FFFD, one
// replacement per source byte for single-byte encodings, so fixed column
// offsets survive. The caller must Close the returned reader.
func OpenMember(data []byte, match MemberMatcher, enc encoding.Encoding) (io.ReadCloser, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, "", fmt.Errorf("open zip: %w", err)
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", fmt.Errorf("open member %s: %w", f.Name, err)
		}
		return &decodedMember{Reader: enc.NewDecoder().Reader(rc), closer: rc}, f.Name, nil
	}
	return nil, "", ErrMemberNotFound
}

type decodedMember struct {
	io.Reader
	closer io.Closer
}

func (m *decodedMember) Close() error { return m.closer.Close() }
