package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Metadata is an opaque string map persisted as JSONB.
type Metadata map[string]string

// Value marshals the map into JSON.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	buf, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes JSON into the map.
func (m *Metadata) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	if raw == nil {
		*m = nil
		return nil
	}
	return json.Unmarshal(raw, m)
}

// StringList is a list of strings persisted as a JSON array.
type StringList []string

// Value marshals the list into JSON.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	buf, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(buf), nil
}

// Scan decodes a JSON array into the list.
func (s *StringList) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("string list: %w", err)
	}
	if raw == nil {
		*s = nil
		return nil
	}
	return json.Unmarshal(raw, s)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
