package question

import (
	"math/rand"
	"testing"
)

func TestShuffleOptionsRoundTrip(t *testing.T) {
	options := []string{"alpha", "beta", "gamma", "delta"}

	// Every permutation the shuffle produces must translate a selected
	// shuffled index back to the exact original index.
	for seed := int64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewSource(seed))
		shuffled, mapping := shuffleOptions(options, rng.Intn)

		if len(shuffled) != len(options) || len(mapping) != len(options) {
			t.Fatalf("seed %d: got %d options and %d mapping entries", seed, len(shuffled), len(mapping))
		}

		for shuffledIdx := range shuffled {
			orig, ok := MapToOriginal(mapping, shuffledIdx)
			if !ok {
				t.Fatalf("seed %d: mapping rejected valid index %d", seed, shuffledIdx)
			}
			if options[orig] != shuffled[shuffledIdx] {
				t.Fatalf("seed %d: shuffled[%d]=%q but options[%d]=%q",
					seed, shuffledIdx, shuffled[shuffledIdx], orig, options[orig])
			}
		}
	}
}

func TestShuffleOptionsIsPermutation(t *testing.T) {
	options := []string{"a", "b", "c", "d"}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 50; i++ {
		_, mapping := shuffleOptions(options, rng.Intn)

		seen := make(map[int]bool)
		for _, orig := range mapping {
			if orig < 0 || orig >= len(options) {
				t.Fatalf("mapping entry %d out of range", orig)
			}
			if seen[orig] {
				t.Fatalf("mapping %v repeats original index %d", mapping, orig)
			}
			seen[orig] = true
		}
	}
}

func TestMapToOriginalBounds(t *testing.T) {
	tests := []struct {
		name     string
		mapping  []int
		selected int
		wantOK   bool
	}{
		{name: "valid first", mapping: []int{2, 0, 3, 1}, selected: 0, wantOK: true},
		{name: "valid last", mapping: []int{2, 0, 3, 1}, selected: 3, wantOK: true},
		{name: "negative", mapping: []int{2, 0, 3, 1}, selected: -1, wantOK: false},
		{name: "past end", mapping: []int{2, 0, 3, 1}, selected: 4, wantOK: false},
		{name: "empty mapping", mapping: nil, selected: 0, wantOK: false},
		{name: "corrupt mapping", mapping: []int{9, 0}, selected: 0, wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := MapToOriginal(tc.mapping, tc.selected)
			if ok != tc.wantOK {
				t.Fatalf("MapToOriginal(%v, %d) ok=%v, want %v", tc.mapping, tc.selected, ok, tc.wantOK)
			}
		})
	}
}

func TestMapToOriginalTranslates(t *testing.T) {
	// mapping[i] is the original index of shuffled position i.
	mapping := []int{2, 0, 3, 1}

	for shuffled, wantOrig := range map[int]int{0: 2, 1: 0, 2: 3, 3: 1} {
		got, ok := MapToOriginal(mapping, shuffled)
		if !ok || got != wantOrig {
			t.Fatalf("MapToOriginal(%v, %d) = %d, %v; want %d", mapping, shuffled, got, ok, wantOrig)
		}
	}
}
