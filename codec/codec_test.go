package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/adamwoolhether/httpkit/codec"
	"github.com/google/go-cmp/cmp"
)

type payload struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func TestCodecs(t *testing.T) {
	codecs := map[string]codec.Codec{
		"std":    codec.Std(),
		"number": codec.StdNumber(),
		"gojson": codec.GoJSON(),
	}

	in := payload{Name: "search", Items: []string{"a", "b"}}

	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			b, err := c.Marshal(in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var out payload
			if err := c.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if diff := cmp.Diff(in, out); diff != "" {
				t.Errorf("payload mismatch (-exp +got):\n%s", diff)
			}
		})
	}
}

func TestStdNumber(t *testing.T) {
	var out map[string]any
	if err := codec.StdNumber().Unmarshal([]byte(`{"n":12345678901234567890}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	n, ok := out["n"].(json.Number)
	if !ok {
		t.Fatalf("exp json.Number, got %T", out["n"])
	}
	if n.String() != "12345678901234567890" {
		t.Errorf("exp precision kept, got %s", n)
	}
}

func TestUnmarshal_Invalid(t *testing.T) {
	var out payload
	if err := codec.Std().Unmarshal([]byte(`not json`), &out); err == nil {
		t.Error("exp error for invalid json")
	}
	if err := codec.GoJSON().Unmarshal([]byte(`not json`), &out); err == nil {
		t.Error("exp error for invalid json")
	}
}

func TestUnmarshal_TrailingData(t *testing.T) {
	codecs := map[string]codec.Codec{
		"std":    codec.Std(),
		"number": codec.StdNumber(),
		"gojson": codec.GoJSON(),
	}

	bodies := map[string]string{
		"html":         `["a","b"]<html>error page</html>`,
		"second value": `["a"] ["b"]`,
	}

	for name, c := range codecs {
		for bodyName, body := range bodies {
			t.Run(name+"/"+bodyName, func(t *testing.T) {
				var out []string
				if err := c.Unmarshal([]byte(body), &out); err == nil {
					t.Errorf("exp error for trailing data, got %v", out)
				}
			})
		}
	}

	var out []string
	if err := codec.Std().Unmarshal([]byte("[\"a\"]\n  "), &out); err != nil {
		t.Errorf("exp trailing whitespace accepted, got %v", err)
	}
}
