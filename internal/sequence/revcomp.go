package sequence

// complement maps every base of the alphabet to its complement, keeping
// case. Zero marks bytes outside the alphabet.
var complement [256]byte

func init() {
	for _, pair := range [][2]byte{
		{'A', 'T'}, {'C', 'G'},
		{'R', 'Y'}, {'M', 'K'}, {'S', 'S'}, {'W', 'W'},
		{'H', 'D'}, {'B', 'V'}, {'N', 'N'},
	} {
		a, b := pair[0], pair[1]
		complement[a], complement[b] = b, a
		complement[a+'a'-'A'], complement[b+'a'-'A'] = b+'a'-'A', a+'a'-'A'
	}
}

// Complement returns the complement of a single base.
func Complement(b byte) (byte, bool) {
	c := complement[b]
	return c, c != 0
}

// ReverseComplement returns a new slice holding the reverse complement of
// bases. Degenerate codes are complemented to their IUPAC partner and case
// is kept. A byte outside the alphabet yields an *InvalidBaseError whose
// position refers to bases.
func ReverseComplement(bases []byte) ([]byte, error) {
	n := len(bases)
	result := make([]byte, n)
	for i, b := range bases {
		c := complement[b]
		if c == 0 {
			return nil, &InvalidBaseError{Position: i, Found: b}
		}
		result[n-1-i] = c
	}
	return result, nil
}

// MustReverseComplement is like ReverseComplement but panics on an invalid
// base. It is meant for compiled-in adapter tables.
func MustReverseComplement(bases []byte) []byte {
	result, err := ReverseComplement(bases)
	if err != nil {
		panic(err)
	}
	return result
}

// Reverse returns a reversed copy of b. It is used for quality strings that
// follow a reverse complemented read.
func Reverse(b []byte) []byte {
	n := len(b)
	result := make([]byte, n)
	for i, c := range b {
		result[n-1-i] = c
	}
	return result
}
