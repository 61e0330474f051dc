package types

import (
	"encoding/json"
	"testing"
)

func TestOptionalAbsent(t *testing.T) {
	var payload struct {
		Name Optional[string] `json:"name"`
	}
	if err := json.Unmarshal([]byte(`{}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if payload.Name.Set {
		t.Error("absent field should not be Set")
	}
}

func TestOptionalNull(t *testing.T) {
	var payload struct {
		Name Optional[string] `json:"name"`
	}
	if err := json.Unmarshal([]byte(`{"name": null}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.Name.Set {
		t.Error("null field should be Set")
	}
	if payload.Name.Valid {
		t.Error("null field should not be Valid")
	}
}

func TestOptionalValue(t *testing.T) {
	var payload struct {
		Count Optional[int] `json:"count"`
	}
	if err := json.Unmarshal([]byte(`{"count": 7}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.Count.Set || !payload.Count.Valid {
		t.Error("value field should be Set and Valid")
	}
	if payload.Count.Value != 7 {
		t.Errorf("expected 7, got %d", payload.Count.Value)
	}
}

func TestOptionalNestedUnmarshaler(t *testing.T) {
	var payload struct {
		Cost Optional[FlexFloat64] `json:"cost"`
	}
	if err := json.Unmarshal([]byte(`{"cost": "12,5"}`), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.Cost.Valid || payload.Cost.Value.Float64() != 12.5 {
		t.Errorf("expected 12.5, got %v", payload.Cost.Value)
	}
}

func TestOptionalMarshal(t *testing.T) {
	out, err := json.Marshal(Some("hello"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `"hello"` {
		t.Errorf("expected \"hello\", got %s", out)
	}

	out, err = json.Marshal(Null[string]())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != "null" {
		t.Errorf("expected null, got %s", out)
	}
}
