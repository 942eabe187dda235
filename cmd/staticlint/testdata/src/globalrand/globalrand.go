package globalrand

import (
	"math/rand"
	randv2 "math/rand/v2"
)

func pick(n int) int {
	return rand.Intn(n) // want "globalrandcheck: rand.Intn uses the global source, inject a \\*rand.Rand"
}

func pickV2(n int) int {
	return randv2.IntN(n) // want "globalrandcheck: rand.IntN uses the global source, inject a \\*rand.Rand"
}

func shuffle(s []int) {
	randv2.Shuffle(len(s), func(i, j int) { s[i], s[j] = s[j], s[i] }) // want "globalrandcheck: rand.Shuffle uses"
}

func injected(seed uint64, n int) int {
	r := randv2.New(randv2.NewPCG(seed, seed))
	return r.IntN(n)
}

func legacy(seed int64, n int) int {
	r := rand.New(rand.NewSource(seed))
	return r.Intn(n)
}
