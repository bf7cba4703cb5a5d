package utils

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewIDIsUUID(t *testing.T) {
	id := NewID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid, got %q: %v", id, err)
	}
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for n := 0; n < 1000; n++ {
		id := NewID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestShortSuffix(t *testing.T) {
	tests := []struct {
		id   string
		n    int
		want string
	}{
		{"abcdef", 4, "cdef"},
		{"abc", 4, "abc"},
		{"", 4, ""},
		{"abcdef", 0, ""},
	}
	for _, tt := range tests {
		if got := ShortSuffix(tt.id, tt.n); got != tt.want {
			t.Errorf("ShortSuffix(%q, %d) = %q, want %q", tt.id, tt.n, got, tt.want)
		}
	}
}
