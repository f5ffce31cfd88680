package dbtypes

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDArrayRoundTrip(t *testing.T) {
	ids := UUIDArray{uuid.New(), uuid.New(), uuid.New()}

	val, err := ids.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var scanned UUIDArray
	if err := scanned.Scan(val); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(scanned) != len(ids) {
		t.Fatalf("length mismatch: %d vs %d", len(scanned), len(ids))
	}
	for i := range ids {
		if scanned[i] != ids[i] {
			t.Fatalf("element %d mismatch (order must be preserved)", i)
		}
	}
}

func TestUUIDArrayEmpty(t *testing.T) {
	var arr UUIDArray
	if err := arr.Scan("{}"); err != nil {
		t.Fatalf("Scan empty: %v", err)
	}
	if len(arr) != 0 {
		t.Fatalf("expected empty array, got %v", arr)
	}

	val, err := UUIDArray{}.Value()
	if err != nil {
		t.Fatalf("Value empty: %v", err)
	}
	if val != "{}" {
		t.Fatalf("empty literal = %v", val)
	}
}

func TestUUIDArrayContains(t *testing.T) {
	member := uuid.New()
	arr := UUIDArray{uuid.New(), member}
	if !arr.Contains(member) {
		t.Fatal("Contains should find a member")
	}
	if arr.Contains(uuid.New()) {
		t.Fatal("Contains should reject a non-member")
	}
	if (UUIDArray{}).Contains(member) {
		t.Fatal("empty set contains nothing")
	}
}

func TestUUIDArrayScanRejectsGarbage(t *testing.T) {
	var arr UUIDArray
	if err := arr.Scan("{not-a-uuid}"); err == nil {
		t.Fatal("expected parse error")
	}
	if err := arr.Scan(42); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
