package question

import "math/rand"

// shuffleOptions returns the options in a fresh random order along with the
// permutation that undoes it: mapping[i] is the original index of the option
// now at position i. Fisher-Yates over an index slice keeps the two outputs
// consistent by construction.
func shuffleOptions(options []string, intn func(int) int) ([]string, []int) {
	mapping := make([]int, len(options))
	for i := range mapping {
		mapping[i] = i
	}
	for i := len(mapping) - 1; i > 0; i-- {
		j := intn(i + 1)
		mapping[i], mapping[j] = mapping[j], mapping[i]
	}

	shuffled := make([]string, len(options))
	for i, orig := range mapping {
		shuffled[i] = options[orig]
	}
	return shuffled, mapping
}

// ShuffleOptions shuffles with the shared math/rand source.
func ShuffleOptions(options []string) ([]string, []int) {
	return shuffleOptions(options, rand.Intn)
}

// MapToOriginal translates a selected shuffled index back to the original
// pre-shuffle option index. The bool is false when the index or mapping is
// out of range.
func MapToOriginal(mapping []int, shuffledIndex int) (int, bool) {
	if shuffledIndex < 0 || shuffledIndex >= len(mapping) {
		return 0, false
	}
	orig := mapping[shuffledIndex]
	if orig < 0 || orig >= len(mapping) {
		return 0, false
	}
	return orig, true
}
