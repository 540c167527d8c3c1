// Package encoding decodes model and material text written by tools that
// predate UTF-8.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned for a codepage name Lookup does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var byName = map[string]xenc.Encoding{
	"windows-1251": charmap.Windows1251,
	"cp1251":       charmap.Windows1251,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"koi8-r":       charmap.KOI8R,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"euc-kr":       korean.EUCKR,
	"cp949":        korean.EUCKR,
}

// Lookup returns the encoding for name. Empty, "utf-8" and "utf8" map to nil,
// meaning the bytes are used as-is.
func Lookup(name string) (xenc.Encoding, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", "utf-8", "utf8":
		return nil, nil
	}
	enc, ok := byName[n]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decode converts data in the named encoding to UTF-8. A leading UTF-8 byte
// order mark is always stripped.
func Decode(data []byte, name string) ([]byte, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return data, nil
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return out, nil
}

// Encode converts UTF-8 text to the named encoding.
func Encode(s string, name string) ([]byte, error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if enc == nil {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return out, nil
}

// NormalizePath lowercases a material-referenced path and converts
// backslashes, which Windows exporters write into MTL files.
func NormalizePath(path string) string {
	return strings.ToLower(strings.ReplaceAll(path, "\\", "/"))
}
