package status

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Map is a service name -> Record mapping that keeps the key order of the
// JSON object it was decoded from (or the order keys were first set).
// Like a Go map it is a reference: copies share the same contents, so a Set
// through one copy is seen, keys and records alike, through every other.
// The zero value is an empty map ready to use.
type Map struct {
	d *mapData
}

type mapData struct {
	keys    []string
	records map[string]Record
}

// NewMap returns an empty map with room for n services.
func NewMap(n int) Map {
	return Map{d: &mapData{
		keys:    make([]string, 0, n),
		records: make(map[string]Record, n),
	}}
}

// Set stores rec under service. A new key is appended; an existing key keeps
// its position and takes the new value.
func (m *Map) Set(service string, rec Record) {
	if m.d == nil {
		m.d = &mapData{records: make(map[string]Record)}
	}
	if _, ok := m.d.records[service]; !ok {
		m.d.keys = append(m.d.keys, service)
	}
	m.d.records[service] = rec
}

// Get returns the record for service.
func (m Map) Get(service string) (Record, bool) {
	if m.d == nil {
		return Record{}, false
	}
	rec, ok := m.d.records[service]
	return rec, ok
}

// Len returns the number of services.
func (m Map) Len() int {
	if m.d == nil {
		return 0
	}
	return len(m.d.keys)
}

// Keys returns the service names in order.
func (m Map) Keys() []string {
	if m.d == nil {
		return []string{}
	}
	out := make([]string, len(m.d.keys))
	copy(out, m.d.keys)
	return out
}

// Entries returns the (service, record) pairs in order.
func (m Map) Entries() []Entry {
	if m.d == nil {
		return []Entry{}
	}
	out := make([]Entry, 0, len(m.d.keys))
	for _, k := range m.d.keys {
		out = append(out, Entry{Service: k, Record: m.d.records[k]})
	}
	return out
}

// HealthyCount returns how many services are healthy.
func (m Map) HealthyCount() int {
	n := 0
	for _, e := range m.Entries() {
		if e.Record.IsHealthy() {
			n++
		}
	}
	return n
}

// MarshalJSON encodes the map as a JSON object in key order.
func (m Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m.Entries() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Service)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(e.Record)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping its key order.
func (m *Map) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("%w: expected object, got %v", ErrInvalidPayload, tok)
	}

	out := NewMap(0)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrInvalidPayload, tok)
		}
		var rec Record
		if err := dec.Decode(&rec); err != nil {
			return fmt.Errorf("%w: service %q: %w", ErrInvalidPayload, key, err)
		}
		out.Set(key, rec)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	*m = out
	return nil
}

// UnmarshalJSON accepts any JSON value except null. Objects supply their
// "status" field; a non-string status keeps its raw JSON text. Anything that
// is not an object yields an empty status.
func (r *Record) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("%w: null record", ErrInvalidPayload)
	}
	if len(data) == 0 || data[0] != '{' {
		*r = Record{}
		return nil
	}

	var raw struct {
		Status json.RawMessage `json:"status"`
		Color  json.RawMessage `json:"color"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record{Status: rawText(raw.Status), Color: rawText(raw.Color)}
	return nil
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
