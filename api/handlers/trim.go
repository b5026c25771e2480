package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/aria-lang/nanotrim/internal/batch"
	"github.com/aria-lang/nanotrim/internal/sequence"
	"github.com/aria-lang/nanotrim/internal/trim"
)

// maxBatchReads bounds the reads of one batch request.
const maxBatchReads = 10000

// Trim serves adapter trimming over a fixed catalog. Trimmers are pooled
// across requests.
type Trim struct {
	defs   []*trim.SequenceDefinition
	config batch.Config
	pool   sync.Pool
}

// NewTrim creates the trim handlers. cfg supplies the scores, window and
// end policy of every request; its filter is ignored.
func NewTrim(defs []*trim.SequenceDefinition, cfg batch.Config) (*Trim, error) {
	if len(defs) == 0 {
		return nil, errors.New("no sequence definitions")
	}
	if err := cfg.Scores.Validate(); err != nil {
		return nil, err
	}
	cfg.Filter = nil
	cfg.Progress = nil

	maxAdapter := 1
	for _, d := range defs {
		if n := d.MaxAdapterLen(); n > maxAdapter {
			maxAdapter = n
		}
	}
	h := &Trim{defs: defs, config: cfg}
	h.pool.New = func() interface{} {
		t, err := trim.NewTrimmer(cfg.Scores, maxAdapter, 1024)
		if err != nil {
			panic(err)
		}
		t.Window = cfg.Window
		return t
	}
	return h, nil
}

func (h *Trim) selected(names []string) ([]*trim.SequenceDefinition, error) {
	if len(names) == 0 {
		return h.defs, nil
	}
	defs := make([]*trim.SequenceDefinition, 0, len(names))
	for _, name := range names {
		d, ok := trim.Find(h.defs, name)
		if !ok {
			return nil, errors.New("unknown sequence definition " + name)
		}
		defs = append(defs, d)
	}
	return defs, nil
}

// TrimReadRequest asks for the boundary of one read.
type TrimReadRequest struct {
	Sequence    string   `json:"sequence"`
	Definitions []string `json:"definitions,omitempty"`
}

// EndMatchResponse is one accepted adapter end.
type EndMatchResponse struct {
	End         string  `json:"end"`
	Coverage    float64 `json:"coverage"`
	Identity    float64 `json:"identity"`
	Cut         int     `json:"cut"`
	TargetStart int     `json:"target_start"`
	TargetEnd   int     `json:"target_end"`
	CIGAR       string  `json:"cigar"`
}

// TrimReadResponse is the boundary of one read. Start and End are the
// 0-based half-open kept range.
type TrimReadResponse struct {
	Found             bool               `json:"found"`
	Definition        string             `json:"definition,omitempty"`
	Start             int                `json:"start"`
	End               int                `json:"end"`
	ReverseComplement bool               `json:"reverse_complement"`
	Degenerate        bool               `json:"degenerate"`
	Insert            string             `json:"insert,omitempty"`
	Matches           []EndMatchResponse `json:"matches,omitempty"`
}

// ReadHandler finds the boundary of one read and returns the insert in
// forward orientation.
func (h *Trim) ReadHandler(w http.ResponseWriter, r *http.Request) {
	var req TrimReadRequest
	if !decode(w, r, &req) {
		return
	}
	read := []byte(strings.ToUpper(req.Sequence))
	if err := sequence.Validate(read); err != nil {
		writeError(w, http.StatusBadRequest, "sequence: %v", err)
		return
	}
	defs, err := h.selected(req.Definitions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	t := h.pool.Get().(*trim.Trimmer)
	def, b, ok := t.BestDefinition(defs, read)
	h.pool.Put(t)
	if !ok {
		writeJSON(w, http.StatusOK, TrimReadResponse{})
		return
	}

	resp := TrimReadResponse{
		Found:             true,
		Definition:        def.Name,
		Start:             b.Start,
		End:               b.End,
		ReverseComplement: b.ReverseComplement,
		Degenerate:        b.Empty(),
	}
	if h.config.RequireBothEnds {
		resp.Degenerate = b.Degenerate(len(read))
	}
	for _, m := range b.Matches {
		resp.Matches = append(resp.Matches, endMatchResponse(m))
	}
	if !resp.Degenerate {
		insert := read[b.Start:b.End]
		if b.ReverseComplement {
			insert = sequence.MustReverseComplement(insert)
		}
		resp.Insert = string(insert)
	}
	writeJSON(w, http.StatusOK, resp)
}

func endMatchResponse(m trim.EndMatch) EndMatchResponse {
	return EndMatchResponse{
		End:         m.End.String(),
		Coverage:    m.Coverage,
		Identity:    m.Identity,
		Cut:         m.Cut,
		TargetStart: m.Alignment.TargetRange.Start,
		TargetEnd:   m.Alignment.TargetRange.End,
		CIGAR:       m.Alignment.Cigar().String(),
	}
}

// BatchRead is one read of a batch request. Quality is optional Phred+33.
type BatchRead struct {
	ID       string `json:"id"`
	Sequence string `json:"sequence"`
	Quality  string `json:"quality,omitempty"`
}

// TrimBatchRequest trims many reads at once.
type TrimBatchRequest struct {
	Reads         []BatchRead `json:"reads"`
	Definitions   []string    `json:"definitions,omitempty"`
	KeepUntrimmed bool        `json:"keep_untrimmed,omitempty"`
}

// BatchOutcome reports what happened to one input read. Trimmed is set
// when the read was written with its adapters removed.
type BatchOutcome struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	Trimmed    bool   `json:"trimmed"`
	Definition string `json:"definition,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// TrimBatchResponse holds the written reads and per-read outcomes.
type TrimBatchResponse struct {
	RunID    string         `json:"run_id"`
	Reads    []BatchRead    `json:"reads"`
	Outcomes []BatchOutcome `json:"outcomes"`
	Trimmed  int64          `json:"trimmed"`
	Forward  int64          `json:"forward"`
	Reverse  int64          `json:"reverse"`
}

// BatchHandler trims a batch of reads. The request context cancels the run.
func (h *Trim) BatchHandler(w http.ResponseWriter, r *http.Request) {
	var req TrimBatchRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Reads) > maxBatchReads {
		writeError(w, http.StatusBadRequest, "at most %d reads per batch", maxBatchReads)
		return
	}
	defs, err := h.selected(req.Definitions)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	reads := make([]batch.Read, len(req.Reads))
	for i, br := range req.Reads {
		reads[i] = batch.Read{ID: br.ID, Sequence: []byte(br.Sequence)}
		if br.Quality != "" {
			reads[i].Quality = []byte(br.Quality)
		}
	}

	cfg := h.config
	cfg.KeepUntrimmed = req.KeepUntrimmed
	result, err := batch.Run(r.Context(), cfg, defs, reads)
	if err != nil {
		writeError(w, http.StatusBadRequest, "%v", err)
		return
	}

	resp := TrimBatchResponse{
		RunID:    result.RunID.String(),
		Reads:    make([]BatchRead, 0, len(result.Reads)),
		Outcomes: make([]BatchOutcome, len(result.Outcomes)),
		Trimmed:  result.Summary.Trimmed(),
		Forward:  result.Summary.Forward.Load(),
		Reverse:  result.Summary.Reverse.Load(),
	}
	for _, rd := range result.Reads {
		resp.Reads = append(resp.Reads, BatchRead{ID: rd.ID, Sequence: string(rd.Sequence), Quality: string(rd.Quality)})
	}
	for i, o := range result.Outcomes {
		resp.Outcomes[i] = BatchOutcome{
			ID:         reads[i].ID,
			Status:     o.Status.String(),
			Trimmed:    result.Trimmed.Test(uint(i)),
			Definition: o.Definition,
			Reason:     o.Reason,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// AdapterResponse describes one adapter end of a definition.
type AdapterResponse struct {
	End         string  `json:"end"`
	Sequence    string  `json:"sequence"`
	Length      int     `json:"length"`
	MinCoverage float64 `json:"min_coverage"`
	MinIdentity float64 `json:"min_identity"`
}

// DefinitionResponse describes a sequence definition.
type DefinitionResponse struct {
	Name     string            `json:"name"`
	Adapters []AdapterResponse `json:"adapters"`
}

// CatalogHandler lists the served definitions with all derived ends.
func (h *Trim) CatalogHandler(w http.ResponseWriter, r *http.Request) {
	resp := make([]DefinitionResponse, 0, len(h.defs))
	for _, d := range h.defs {
		dr := DefinitionResponse{Name: d.Name}
		for _, end := range trim.Ends {
			a := d.Adapter(end)
			if a == nil {
				continue
			}
			dr.Adapters = append(dr.Adapters, AdapterResponse{
				End:         end.String(),
				Sequence:    string(a.Sequence),
				Length:      a.Length,
				MinCoverage: a.MinCoverage,
				MinIdentity: a.MinIdentity,
			})
		}
		resp = append(resp, dr)
	}
	writeJSON(w, http.StatusOK, resp)
}

