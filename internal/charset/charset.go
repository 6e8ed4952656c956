// Package charset transcodes text between UTF-8 and named output encodings
// (WHATWG labels such as "utf-8", "utf-16le", "windows-1252").
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// ErrUnknownEncoding is returned for labels htmlindex does not know.
var ErrUnknownEncoding = errors.New("charset: unknown encoding")

// IsUTF8 reports whether name designates UTF-8 (or is empty).
func IsUTF8(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return true
	}
	return false
}

func lookup(name string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Validate checks that name is a known encoding label.
func Validate(name string) error {
	if IsUTF8(name) {
		return nil
	}
	_, err := lookup(name)
	return err
}

// Encode converts UTF-8 data into the named encoding.
func Encode(name string, data []byte) ([]byte, error) {
	if IsUTF8(name) {
		return data, nil
	}
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewEncoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode as %s: %w", name, err)
	}
	return out, nil
}

// Decode converts data in the named encoding into UTF-8.
func Decode(name string, data []byte) ([]byte, error) {
	if IsUTF8(name) {
		return data, nil
	}
	enc, err := lookup(name)
	if err != nil {
		return nil, err
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return out, nil
}
