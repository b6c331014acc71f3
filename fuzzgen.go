package bfopt

// GenerateRandomProgram builds a random, syntactically valid (bracket-
// balanced) Brainfuck source of at most maxLen bytes, using the
// package-level pooledRand the way the reference toolchain's synthesis
// step builds random instruction streams.
func GenerateRandomProgram(maxLen int) []byte {
	alphabet := []byte{'+', '-', '>', '<', '.', ',', '['}
	var out []byte
	depth := 0

	for len(out) < maxLen {
		remaining := maxLen - len(out)
		// Leave room to close every open loop before hitting maxLen.
		if depth >= remaining {
			break
		}

		choice := alphabet[rng.Intn(len(alphabet))]
		// A '[' also needs room for its own ']'.
		if choice == '[' && (depth >= 4 || depth+2 > remaining) {
			choice = '+'
		}
		out = append(out, choice)
		if choice == '[' {
			depth++
		}
	}

	for ; depth > 0; depth-- {
		out = append(out, ']')
	}
	return out
}
