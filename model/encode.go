package model

import (
	"bytes"
	"encoding/json"
)

// EncodeJSON is json.Marshal without HTML escaping, so raw milestone values keep their
// exact bytes when they are written back out.
func EncodeJSON(v any) ([]byte, error) {
	return EncodeJSONIndent(v, "")
}

// EncodeJSONIndent is EncodeJSON with each level indented by indent.
func EncodeJSONIndent(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
