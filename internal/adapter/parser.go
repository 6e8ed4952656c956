package adapter

import (
	"fmt"

	"emojigen/internal/logging"
	"emojigen/internal/parser"
)

type parserKind int

const (
	parserNone parserKind = iota
	parserGeneric
	parserCustom
)

// Parser is either the built-in generic record parser or a custom function.
// Construct it with GenericParser or CustomParser.
//
// Parsed values are cached as JSON, so custom parser results must round-trip
// through encoding/json.
type Parser[P any] struct {
	kind    parserKind
	options func(vc VersionContext) parser.Options
	custom  func(vc VersionContext, raw string) (P, error)
}

// GenericParser selects parser.Parse. options may be nil; it receives the
// per-URL context, so options can vary by VersionContext.Key.
func GenericParser(options func(vc VersionContext) parser.Options) Parser[*parser.Result] {
	return Parser[*parser.Result]{kind: parserGeneric, options: options}
}

// CustomParser selects fn.
func CustomParser[P any](fn func(vc VersionContext, raw string) (P, error)) Parser[P] {
	return Parser[P]{kind: parserCustom, custom: fn}
}

func (p Parser[P]) valid() bool {
	switch p.kind {
	case parserGeneric:
		return true
	case parserCustom:
		return p.custom != nil
	}
	return false
}

// bind returns the raw-bytes parser the cache calls on a miss.
func (p Parser[P]) bind(vc VersionContext) func(raw []byte) (P, error) {
	return func(raw []byte) (P, error) {
		var zero P
		switch p.kind {
		case parserGeneric:
			var opts parser.Options
			if p.options != nil {
				opts = p.options(vc)
			}
			result := parser.Parse(string(raw), opts)
			logging.ParseDebug("Parsed %s: %d lines", vc.Key, result.TotalLines)
			// GenericParser only constructs Parser[*parser.Result].
			return any(result).(P), nil
		case parserCustom:
			return p.custom(vc, string(raw))
		}
		return zero, fmt.Errorf("%w: parser not set", ErrIncompleteTransformer)
	}
}
