package alignment

// Bit masks of the four canonical bases.
const (
	maskA = 1 << iota
	maskC
	maskG
	maskT
)

// degenerate maps an IUPAC degenerate code (either case) to the set of
// bases it stands for. Canonical bases have no entry.
var degenerate [256]byte

// canonical maps A, C, G, T (either case) to their mask.
var canonical [256]byte

// matchTable[q][t] reports whether query base q matches read base t.
var matchTable [256][256]bool

func init() {
	for _, c := range []struct {
		base byte
		mask byte
	}{
		{'A', maskA}, {'C', maskC}, {'G', maskG}, {'T', maskT},
	} {
		canonical[c.base] = c.mask
		canonical[c.base+'a'-'A'] = c.mask
	}

	for _, c := range []struct {
		code byte
		mask byte
	}{
		{'R', maskA | maskG},
		{'Y', maskC | maskT},
		{'M', maskA | maskC},
		{'K', maskG | maskT},
		{'S', maskC | maskG},
		{'W', maskA | maskT},
		{'H', maskA | maskC | maskT},
		{'B', maskC | maskG | maskT},
		{'V', maskA | maskC | maskG},
		{'D', maskA | maskG | maskT},
		{'N', maskA | maskC | maskG | maskT},
	} {
		degenerate[c.code] = c.mask
		degenerate[c.code+'a'-'A'] = c.mask
	}

	for q := 0; q < 256; q++ {
		for t := 0; t < 256; t++ {
			matchTable[q][t] = q == t || resolve(byte(q), byte(t))
		}
	}
}

func resolve(q, t byte) bool {
	if set := degenerate[q]; set != 0 {
		return set&canonical[t] != 0
	}
	if canonical[q] != 0 {
		return canonical[q] == canonical[t]
	}
	return false
}

// Matches reports whether a query base (adapter, primer or barcode) matches a
// read base.
//
// Identical bytes always match and case is ignored. A degenerate IUPAC code
// matches every canonical base it represents, but only in the query
// position: a degenerate byte in the read matches nothing but itself.
func Matches(query, read byte) bool {
	return matchTable[query][read]
}

// IsDegenerate reports whether b is one of the 11 IUPAC degenerate codes.
func IsDegenerate(b byte) bool {
	return degenerate[b] != 0
}
