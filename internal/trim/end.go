package trim

import "fmt"

// End identifies one of the four adapter positions of a definition.
type End int

const (
	// End5Forward is the 5' adapter of a read in forward orientation.
	End5Forward End = iota
	// End3Forward is the 3' adapter of a read in forward orientation.
	End3Forward
	// End5RevComp is the 5' adapter of a reverse complemented read, the
	// reverse complement of the forward 3' adapter.
	End5RevComp
	// End3RevComp is the 3' adapter of a reverse complemented read, the
	// reverse complement of the forward 5' adapter.
	End3RevComp

	numEnds = 4
)

// Ends lists all ends in search order.
var Ends = [numEnds]End{End5Forward, End3Forward, End5RevComp, End3RevComp}

var endNames = [numEnds]string{"end5", "end3", "rev_com_end5", "rev_com_end3"}

func (e End) String() string {
	if e < 0 || e >= numEnds {
		return fmt.Sprintf("End(%d)", int(e))
	}
	return endNames[e]
}

// IsFivePrime reports whether the adapter sits at the start of the read.
func (e End) IsFivePrime() bool {
	return e == End5Forward || e == End5RevComp
}

// IsReverse reports whether the end belongs to the reverse complement
// orientation.
func (e End) IsReverse() bool {
	return e == End5RevComp || e == End3RevComp
}

// ParseEnd parses the name of an end as printed by String.
func ParseEnd(name string) (End, error) {
	for i, n := range endNames {
		if n == name {
			return End(i), nil
		}
	}
	return 0, fmt.Errorf("unknown adapter end %q", name)
}
