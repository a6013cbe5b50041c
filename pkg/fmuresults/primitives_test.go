package fmuresults

import (
	"strings"
	"testing"
)

func TestIsMD5Hex(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{strings.Repeat("a", 32), true},
		{strings.Repeat("0", 32), true},
		{"8b1a9953c4611296a827abf8c47804d7", true},
		{strings.Repeat("A", 32), false},
		{strings.Repeat("a", 31), false},
		{strings.Repeat("a", 33), false},
		{strings.Repeat("g", 32), false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsMD5Hex(tc.in); got != tc.want {
			t.Errorf("IsMD5Hex(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsVersionStr(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0.8.0", true},
		{"1.2.3", true},
		{"1.2.3-rc1", true},
		{"1.2", false},
		{"v1.2.3", false},
		{"1.2.3 beta", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := IsVersionStr(tc.in); got != tc.want {
			t.Errorf("IsVersionStr(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestDeterministicUUIDStable(t *testing.T) {
	a := DeterministicUUID("somecase--iter-0")
	b := DeterministicUUID("somecase--iter-0")
	if a != b {
		t.Fatalf("same input produced %s and %s", a, b)
	}
	c := DeterministicUUID("somecase--iter-1")
	if a == c {
		t.Fatal("different inputs produced the same identifier")
	}
	if !IsUUIDStr(a.String()) {
		t.Fatalf("derived identifier %q is not a uuid", a)
	}
}

func TestSchemaVersionIsAVersionString(t *testing.T) {
	if !IsVersionStr(SchemaVersion) {
		t.Fatalf("SchemaVersion %q is not a version string", SchemaVersion)
	}
	if !IsVersionStr(ToolVersion) {
		t.Fatalf("ToolVersion %q is not a version string", ToolVersion)
	}
}
