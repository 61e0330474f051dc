package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestTagListArray(t *testing.T) {
	var tags TagList
	if err := json.Unmarshal([]byte(`["urgent","sav"]`), &tags); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(tags.Slice(), []string{"urgent", "sav"}) {
		t.Errorf("expected [urgent sav], got %v", tags)
	}
}

func TestTagListString(t *testing.T) {
	var tags TagList
	if err := json.Unmarshal([]byte(`"urgent,sav"`), &tags); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !reflect.DeepEqual(tags.Slice(), []string{"urgent", "sav"}) {
		t.Errorf("expected [urgent sav], got %v", tags)
	}
}

func TestTagListEmptyString(t *testing.T) {
	var tags TagList
	if err := json.Unmarshal([]byte(`""`), &tags); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(tags) != 0 {
		t.Errorf("expected empty list, got %v", tags)
	}
}
