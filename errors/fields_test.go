package errors

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestFieldErrors_InsertionOrder(t *testing.T) {
	var f FieldErrors
	f.Add("name", "required")
	f.Add("email", "invalid")
	f.Add("name", "too short")

	if got := f.Fields(); !reflect.DeepEqual(got, []string{"name", "email"}) {
		t.Errorf("unexpected field order: %v", got)
	}
	if got := f.Messages(); !reflect.DeepEqual(got, []string{"required", "too short", "invalid"}) {
		t.Errorf("unexpected flattened messages: %v", got)
	}
}

func TestFieldErrors_JSONKeepsDocumentOrder(t *testing.T) {
	input := `{"zeta":["a","b"],"alpha":["c"],"mid":"d"}`
	var f FieldErrors
	if err := json.Unmarshal([]byte(input), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := f.Fields(); !reflect.DeepEqual(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("decode lost order: %v", got)
	}
	if got := f.Messages(); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("unexpected messages: %v", got)
	}

	out, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"zeta":["a","b"],"alpha":["c"],"mid":["d"]}` {
		t.Errorf("encode lost order: %s", out)
	}
}

func TestFieldErrors_UnmarshalRejectsNonObject(t *testing.T) {
	var f FieldErrors
	if err := json.Unmarshal([]byte(`["a"]`), &f); err == nil {
		t.Error("expected error for array input")
	}
	if err := json.Unmarshal([]byte(`{"a":[1]}`), &f); err == nil {
		t.Error("expected error for non-string messages")
	}
}

func TestFieldErrors_Null(t *testing.T) {
	var body Body
	if err := json.Unmarshal([]byte(`{"code":"Validation","errors":null}`), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Errors != nil && !body.Errors.IsEmpty() {
		t.Errorf("expected no field errors, got %v", body.Errors.Fields())
	}
}

func TestFieldErrorsFromMap_Sorted(t *testing.T) {
	f := FieldErrorsFromMap(map[string][]string{"b": {"2"}, "a": {"1"}})
	if got := f.Fields(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("expected sorted fields, got %v", got)
	}
	if got := f.Map(); !reflect.DeepEqual(got, map[string][]string{"a": {"1"}, "b": {"2"}}) {
		t.Errorf("unexpected map: %v", got)
	}
}

func TestNewFieldErrors_Pairs(t *testing.T) {
	f := NewFieldErrors("email", "required", "email", "invalid", "dangling")
	if f.Len() != 1 {
		t.Errorf("expected one field, got %d", f.Len())
	}
	if got := f.Get("email"); len(got) != 2 {
		t.Errorf("expected two messages, got %v", got)
	}
	if f.Get("missing") != nil {
		t.Error("expected nil for unknown field")
	}
}
