package lists

import "math/rand/v2"

// Shuffle permutes records in place with the Fisher-Yates algorithm.
// intn must return a uniform value in [0, n); nil uses math/rand/v2.
func Shuffle(records []string, intn func(n int) int) {
	if intn == nil {
		intn = rand.IntN
	}
	for i := len(records) - 1; i > 0; i-- {
		j := intn(i + 1)
		records[i], records[j] = records[j], records[i]
	}
}
