package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Milestone is one named achievement of a runner in a category. The value is kept as
// raw JSON because its shape differs between milestones.
type Milestone struct {
	Name  string
	Value json.RawMessage
}

// Milestones is an ordered set of milestones. It encodes as a JSON object whose keys
// keep their insertion order, and decodes unknown keys without loss.
type Milestones []Milestone

// Get returns the raw value stored under name.
func (m Milestones) Get(name string) (json.RawMessage, bool) {
	for _, ms := range m {
		if ms.Name == name {
			return ms.Value, true
		}
	}
	return nil, false
}

// Set marshals v and stores it under name, replacing an existing value in place.
func (m *Milestones) Set(name string, v any) error {
	raw, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("failed to encode milestone %q: %w", name, err)
	}
	for i := range *m {
		if (*m)[i].Name == name {
			(*m)[i].Value = raw
			return nil
		}
	}
	*m = append(*m, Milestone{Name: name, Value: raw})
	return nil
}

func (m Milestones) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ms := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := EncodeJSON(ms.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(ms.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		if err := json.Compact(&buf, ms.Value); err != nil {
			return nil, fmt.Errorf("milestone %q: %w", ms.Name, err)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (m *Milestones) UnmarshalJSON(data []byte) error {
	out := Milestones{}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*m = out
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("milestones: expected object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("milestones: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("milestone %q: %w", name, err)
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return fmt.Errorf("milestone %q: %w", name, err)
		}
		out = append(out, Milestone{Name: name, Value: compact.Bytes()})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}
