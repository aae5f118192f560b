package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Adapter converts between Go values and wire payloads.
type Adapter interface {
	// ContentType is sent as the Content-Type of serialized request bodies.
	ContentType() string
	Serialize(v any) ([]byte, error)
	Deserialize(data []byte, v any) error
}

// JSON serializes with encoding/json.
type JSON struct {
	// DisallowUnknownFields rejects payload fields the target does not declare.
	DisallowUnknownFields bool
}

// ContentType returns "application/json".
func (JSON) ContentType() string { return "application/json" }

// Serialize encodes v as JSON.
func (JSON) Serialize(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("serialize json: %w", err)
	}
	return data, nil
}

// Deserialize decodes JSON into v. An empty payload leaves v untouched.
func (j JSON) Deserialize(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if j.DisallowUnknownFields {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("deserialize json: %w", err)
	}
	return nil
}

// YAML serializes with gopkg.in/yaml.v3.
type YAML struct{}

// ContentType returns "application/yaml".
func (YAML) ContentType() string { return "application/yaml" }

// Serialize encodes v as YAML.
func (YAML) Serialize(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("serialize yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("serialize yaml: %w", err)
	}
	return buf.Bytes(), nil
}

// Deserialize decodes YAML into v. An empty payload leaves v untouched.
func (YAML) Deserialize(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("deserialize yaml: %w", err)
	}
	return nil
}
