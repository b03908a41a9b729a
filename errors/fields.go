package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// FieldErrors maps field names to their validation messages. Field order is
// insertion order and survives a JSON round trip, so clients can flatten
// messages in the same order the server produced them.
//
// The zero value is an empty, ready to use set.
type FieldErrors struct {
	order    []string
	messages map[string][]string
}

// NewFieldErrors builds a FieldErrors from alternating field/message pairs.
//
//	errors.NewFieldErrors("email", "is required", "name", "is too long")
func NewFieldErrors(pairs ...string) FieldErrors {
	var f FieldErrors
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Add(pairs[i], pairs[i+1])
	}
	return f
}

// FieldErrorsFromMap converts a plain map. Go maps are unordered, so fields are
// sorted by name.
func FieldErrorsFromMap(m map[string][]string) FieldErrors {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f FieldErrors
	for _, k := range keys {
		f.Add(k, m[k]...)
	}
	return f
}

// Add appends messages to field, registering the field on first use.
func (f *FieldErrors) Add(field string, messages ...string) {
	if f.messages == nil {
		f.messages = make(map[string][]string)
	}
	if _, ok := f.messages[field]; !ok {
		f.order = append(f.order, field)
		f.messages[field] = make([]string, 0, len(messages))
	}
	f.messages[field] = append(f.messages[field], messages...)
}

// Len returns the number of fields.
func (f FieldErrors) Len() int { return len(f.order) }

// IsEmpty reports whether no field has been added.
func (f FieldErrors) IsEmpty() bool { return len(f.order) == 0 }

// Fields returns field names in insertion order.
func (f FieldErrors) Fields() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}

// Get returns the messages for field.
func (f FieldErrors) Get(field string) []string {
	msgs, ok := f.messages[field]
	if !ok {
		return nil
	}
	out := make([]string, len(msgs))
	copy(out, msgs)
	return out
}

// Messages flattens all messages, field by field, keeping the order within each field.
func (f FieldErrors) Messages() []string {
	var out []string
	for _, field := range f.order {
		out = append(out, f.messages[field]...)
	}
	return out
}

// Map returns a copy as a plain map.
func (f FieldErrors) Map() map[string][]string {
	out := make(map[string][]string, len(f.order))
	for _, field := range f.order {
		out[field] = f.Get(field)
	}
	return out
}

// Clone returns a deep copy.
func (f FieldErrors) Clone() FieldErrors {
	var out FieldErrors
	for _, field := range f.order {
		out.Add(field, f.messages[field]...)
	}
	return out
}

// MarshalJSON encodes the set as a JSON object in insertion order.
func (f FieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field)
		if err != nil {
			return nil, err
		}
		msgs := f.messages[field]
		if msgs == nil {
			msgs = []string{}
		}
		val, err := json.Marshal(msgs)
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

// UnmarshalJSON decodes a JSON object keeping the document's key order. Each
// value may be an array of strings or a single string.
func (f *FieldErrors) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("field errors: expected object, got %v", tok)
	}

	var out FieldErrors
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		field, ok := tok.(string)
		if !ok {
			return fmt.Errorf("field errors: expected field name, got %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("field errors: field %q: %w", field, err)
		}
		var msgs []string
		if err := json.Unmarshal(raw, &msgs); err != nil {
			var single string
			if err2 := json.Unmarshal(raw, &single); err2 != nil {
				return fmt.Errorf("field errors: field %q: %w", field, err)
			}
			msgs = []string{single}
		}
		out.Add(field, msgs...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}
