// Package codec provides the JSON strategies used to encode request
// bodies and decode response payloads.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	gojson "github.com/goccy/go-json"
)

// Codec marshals request bodies and unmarshals response bodies.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// Std returns a Codec backed by encoding/json. It is the default.
func Std() Codec {
	return stdCodec{}
}

// StdNumber returns a Codec backed by encoding/json that decodes numbers
// as [json.Number] instead of float64.
func StdNumber() Codec {
	return stdCodec{useNumber: true}
}

// GoJSON returns a Codec backed by github.com/goccy/go-json.
func GoJSON() Codec {
	return goJSONCodec{}
}

var errTrailingData = errors.New("unexpected data after top-level value")

type stdCodec struct {
	useNumber bool
}

func (stdCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (c stdCodec) Unmarshal(data []byte, v any) error {
	d := json.NewDecoder(bytes.NewReader(data))
	if c.useNumber {
		d.UseNumber()
	}

	if err := d.Decode(v); err != nil {
		return err
	}

	if err := d.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errTrailingData
	}

	return nil
}

type goJSONCodec struct{}

func (goJSONCodec) Marshal(v any) ([]byte, error) {
	return gojson.Marshal(v)
}

func (goJSONCodec) Unmarshal(data []byte, v any) error {
	return gojson.Unmarshal(data, v)
}
