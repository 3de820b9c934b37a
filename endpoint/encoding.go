package endpoint

import (
	"fmt"
	"maps"
	"slices"
)

type encodingKind uint8

const (
	encodingNone encodingKind = iota
	encodingQuery
	encodingJSONParameters
	encodingJSONEncodable
	encodingRaw
)

// Encoding is the strategy used to produce a request body.
type Encoding struct {
	kind   encodingKind
	query  []QueryItem
	params map[string]any
	value  any
	raw    []byte
}

// NoBody sends no body.
func NoBody() Encoding {
	return Encoding{kind: encodingNone}
}

// QueryString sends no body and appends items to the URL query.
func QueryString(items ...QueryItem) Encoding {
	return Encoding{kind: encodingQuery, query: slices.Clone(items)}
}

// JSONParameters marshals params as a JSON object. A nil map fails with
// missing request parameters.
func JSONParameters(params map[string]any) Encoding {
	return Encoding{kind: encodingJSONParameters, params: maps.Clone(params)}
}

// JSONEncodable encodes v with the client's codec.
func JSONEncodable(v any) Encoding {
	return Encoding{kind: encodingJSONEncodable, value: v}
}

// RawBody sends b as is.
func RawBody(b []byte) Encoding {
	return Encoding{kind: encodingRaw, raw: slices.Clone(b)}
}

func (e Encoding) String() string {
	switch e.kind {
	case encodingQuery:
		return "query"
	case encodingJSONParameters:
		return "json-parameters"
	case encodingJSONEncodable:
		return "json-encodable"
	case encodingRaw:
		return "raw"
	default:
		return "none"
	}
}

func (e Encoding) identity() string {
	switch e.kind {
	case encodingQuery:
		return fmt.Sprintf("enc=query(%s)", encodeQuery(e.query))
	case encodingJSONParameters:
		return fmt.Sprintf("enc=params(%v)", e.params)
	case encodingJSONEncodable:
		return fmt.Sprintf("enc=encodable(%#v)", e.value)
	case encodingRaw:
		return fmt.Sprintf("enc=raw(%s)", hashBytes(e.raw))
	default:
		return "enc=none"
	}
}
