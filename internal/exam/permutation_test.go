package exam

import (
	"reflect"
	"testing"

	"github.com/eduvio/examdesk/internal/model"
)

func TestPermutationValid(t *testing.T) {
	tests := []struct {
		name string
		p    Permutation
		want bool
	}{
		{"identity", Permutation{0, 1, 2, 3}, true},
		{"reversed", Permutation{3, 2, 1, 0}, true},
		{"empty", Permutation{}, true},
		{"duplicate", Permutation{0, 0, 1, 2}, false},
		{"out of range", Permutation{0, 1, 4, 2}, false},
		{"negative", Permutation{0, -1, 1, 2}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPermutationInverseRoundTrip(t *testing.T) {
	p := Permutation{2, 0, 3, 1}
	inv := p.Inverse()
	for display, orig := range p {
		if inv[orig] != display {
			t.Errorf("inv[%d] = %d, want %d", orig, inv[orig], display)
		}
	}
	if got := inv.Inverse(); !reflect.DeepEqual(got, p) {
		t.Errorf("double inverse = %v, want %v", got, p)
	}
}

func TestApply(t *testing.T) {
	src := []string{"a", "b", "c", "d"}
	got := Apply(Permutation{2, 0, 3, 1}, src)
	want := []string{"c", "a", "d", "b"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Apply() = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(src, []string{"a", "b", "c", "d"}) {
		t.Error("Apply() modified its input")
	}
}

func TestApplyThenInverseRestoresOrder(t *testing.T) {
	src := []string{"a", "b", "c", "d"}
	for i := 0; i < 50; i++ {
		p := NewRandomPermutation(len(src))
		if !p.Valid() {
			t.Fatalf("NewRandomPermutation produced invalid %v", p)
		}
		shuffled := Apply(p, src)
		restored := Apply(p.Inverse(), shuffled)
		if !reflect.DeepEqual(restored, src) {
			t.Fatalf("round trip via %v = %v, want %v", p, restored, src)
		}
	}
}

func TestPermutationMapRoundTrip(t *testing.T) {
	p := Permutation{1, 3, 0, 2}
	got, ok := PermutationFromMap(p.ToMap(), 4)
	if !ok {
		t.Fatal("PermutationFromMap rejected a valid map")
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip = %v, want %v", got, p)
	}
}

func TestPermutationFromMapRejectsCorrupt(t *testing.T) {
	tests := []struct {
		name string
		m    model.OptionMap
		n    int
	}{
		{"wrong size", model.OptionMap{0: 0, 1: 1}, 4},
		{"duplicate target", model.OptionMap{0: 1, 1: 1, 2: 2, 3: 3}, 4},
		{"display out of range", model.OptionMap{0: 0, 1: 1, 2: 2, 7: 3}, 4},
		{"target out of range", model.OptionMap{0: 0, 1: 1, 2: 2, 3: 9}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := PermutationFromMap(tt.m, tt.n); ok {
				t.Errorf("PermutationFromMap accepted %v", tt.m)
			}
		})
	}
}
