package trim

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type catalogEnd struct {
	Sequence string   `yaml:"sequence"`
	Length   int      `yaml:"length,omitempty"`
	Coverage *float64 `yaml:"coverage,omitempty"`
	Identity *float64 `yaml:"identity,omitempty"`
}

func (e *catalogEnd) adapter() Adapter {
	a := Adapter{
		Sequence: []byte(e.Sequence),
		AdapterEnd: AdapterEnd{
			Length:      e.Length,
			MinCoverage: DefaultMinCoverage,
			MinIdentity: DefaultMinIdentity,
		},
	}
	if e.Coverage != nil {
		a.MinCoverage = *e.Coverage
	}
	if e.Identity != nil {
		a.MinIdentity = *e.Identity
	}
	return a
}

type catalogEntry struct {
	Name string      `yaml:"name"`
	End5 *catalogEnd `yaml:"end5"`
	End3 *catalogEnd `yaml:"end3,omitempty"`
}

// LoadCatalog reads definitions from YAML:
//
//	- name: ligation
//	  end5: {sequence: AATGTACTTCGTTCAGTTACGTATTGCT, coverage: 0.5, identity: 0.75}
//	  end3: {sequence: AGCAATACGTAACTGAACGAAGT}
//
// Length defaults to the sequence length and thresholds default to
// DefaultMinCoverage and DefaultMinIdentity. Names must be unique.
func LoadCatalog(r io.Reader) ([]*SequenceDefinition, error) {
	var entries []catalogEntry
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog is empty")
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	defs := make([]*SequenceDefinition, 0, len(entries))
	for i, e := range entries {
		if e.End5 == nil {
			return nil, fmt.Errorf("catalog entry %d (%s): end5 is required", i, e.Name)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("catalog entry %d: duplicate name %q", i, e.Name)
		}
		seen[e.Name] = true

		var end3 *Adapter
		if e.End3 != nil {
			a := e.End3.adapter()
			end3 = &a
		}
		def, err := NewDefinition(e.Name, e.End5.adapter(), end3)
		if err != nil {
			return nil, fmt.Errorf("catalog entry %d: %w", i, err)
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// WriteCatalog encodes the forward ends of defs in the LoadCatalog format.
func WriteCatalog(w io.Writer, defs []*SequenceDefinition) error {
	entries := make([]catalogEntry, 0, len(defs))
	for _, d := range defs {
		entry := catalogEntry{Name: d.Name, End5: toCatalogEnd(d.Adapter(End5Forward))}
		if a := d.Adapter(End3Forward); a != nil {
			entry.End3 = toCatalogEnd(a)
		}
		entries = append(entries, entry)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	return enc.Close()
}

func toCatalogEnd(a *Adapter) *catalogEnd {
	coverage, identity := a.MinCoverage, a.MinIdentity
	return &catalogEnd{
		Sequence: string(a.Sequence),
		Length:   a.Length,
		Coverage: &coverage,
		Identity: &identity,
	}
}

// Oxford Nanopore adapter and barcode sequences.
const (
	ligationStart = "AATGTACTTCGTTCAGTTACGTATTGCT"
	ligationEnd   = "AGCAATACGTAACTGAACGAAGT"
	rapidStart    = "GTTTTCGCATTTATCGTGAAACGCTTTCGCGTTTTTCGTGCGCCGCTTCA"

	barcodeFlank5  = "AAGGTTAA"
	barcodeFlank5r = "CAGCACCT"
	barcodeFlank3  = "AGGTGCTG"
	barcodeFlank3r = "TTAACCTTAGCAAT"
)

var nativeBarcodes = []struct {
	name     string
	barcode  string
	barcodeR string
}{
	{"NB01", "CACAAAGACACCGACAACTTTCTT", "AAGAAAGTTGTCGGTGTCTTTGTG"},
	{"NB02", "ACAGACGACTACAAACGGAATCGA", "TCGATTCCGTTTGTAGTCGTCTGT"},
	{"NB03", "CCTGGTAACTGGGACACAAGACTC", "GAGTCTTGTGTCCCAGTTACCAGG"},
}

// BuiltinCatalog returns fresh copies of the compiled-in definitions: the
// ligation adapter, the rapid adapter and native barcodes NB01 to NB03.
func BuiltinCatalog() []*SequenceDefinition {
	adapter := func(seq string, coverage, identity float64) Adapter {
		return Adapter{
			Sequence:   []byte(seq),
			AdapterEnd: AdapterEnd{Length: len(seq), MinCoverage: coverage, MinIdentity: identity},
		}
	}
	must := func(d *SequenceDefinition, err error) *SequenceDefinition {
		if err != nil {
			panic(err)
		}
		return d
	}

	end3 := adapter(ligationEnd, DefaultMinCoverage, DefaultMinIdentity)
	defs := []*SequenceDefinition{
		must(NewDefinition("ligation", adapter(ligationStart, DefaultMinCoverage, DefaultMinIdentity), &end3)),
		must(NewDefinition("rapid", adapter(rapidStart, DefaultMinCoverage, DefaultMinIdentity), nil)),
	}
	for _, bc := range nativeBarcodes {
		rear := adapter(barcodeFlank3+bc.barcodeR+barcodeFlank3r, 0.8, 0.8)
		defs = append(defs, must(NewDefinition(bc.name,
			adapter(barcodeFlank5+bc.barcode+barcodeFlank5r, 0.8, 0.8), &rear)))
	}
	return defs
}

// Find returns the definition named name.
func Find(defs []*SequenceDefinition, name string) (*SequenceDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}
