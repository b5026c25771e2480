package nanotrim

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Format is a read file format.
type Format int

const (
	// FASTQ records have four lines: @header, bases, +, qualities.
	FASTQ Format = iota
	// FASTA records have a >header followed by any number of base lines.
	FASTA
)

func (f Format) String() string {
	switch f {
	case FASTQ:
		return "fastq"
	case FASTA:
		return "fasta"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat parses "fastq"/"fq" or "fasta"/"fa".
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "fastq", "fq":
		return FASTQ, nil
	case "fasta", "fa":
		return FASTA, nil
	}
	return 0, fmt.Errorf("unknown read format %q", name)
}

// FormatOf guesses the format of a file from its extension, ignoring a
// trailing .gz. Unknown extensions are FASTQ.
func FormatOf(path string) Format {
	path = strings.TrimSuffix(strings.ToLower(path), ".gz")
	switch filepath.Ext(path) {
	case ".fa", ".fasta", ".fna":
		return FASTA
	}
	return FASTQ
}

// maxLine bounds a single line; nanopore reads can exceed a megabase.
const maxLine = 64 * 1024 * 1024

// Reader parses FASTQ or FASTA records. The format is detected from the
// first header.
type Reader struct {
	s      *bufio.Scanner
	line   int
	format Format
	known  bool
	// header of the next record, read ahead
	header []byte
}

// NewReader returns a Reader over r.
func NewReader(r io.Reader) *Reader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxLine)
	return &Reader{s: s}
}

// Format returns the detected format. It is only meaningful after the
// first call to Next.
func (r *Reader) Format() Format {
	return r.format
}

func (r *Reader) scan() ([]byte, bool) {
	if !r.s.Scan() {
		return nil, false
	}
	r.line++
	return bytes.TrimRight(r.s.Bytes(), "\r"), true
}

func (r *Reader) scanNonBlank() ([]byte, bool) {
	for {
		line, ok := r.scan()
		if !ok || len(line) > 0 {
			return line, ok
		}
	}
}

func (r *Reader) eof() error {
	if err := r.s.Err(); err != nil {
		return fmt.Errorf("reading reads: %w", err)
	}
	return io.EOF
}

func (r *Reader) truncated() error {
	if err := r.eof(); err != io.EOF {
		return err
	}
	return fmt.Errorf("line %d: truncated record: %w", r.line, io.ErrUnexpectedEOF)
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Read, error) {
	if !r.known {
		line, ok := r.scanNonBlank()
		if !ok {
			return Read{}, r.eof()
		}
		switch line[0] {
		case '@':
			r.format = FASTQ
		case '>':
			r.format = FASTA
		default:
			return Read{}, fmt.Errorf("line %d: expected a header starting with @ or >", r.line)
		}
		r.known = true
		r.header = clone(line)
	}
	if r.format == FASTQ {
		return r.nextFASTQ()
	}
	return r.nextFASTA()
}

func (r *Reader) nextFASTQ() (Read, error) {
	header := r.header
	r.header = nil
	if header == nil {
		line, ok := r.scanNonBlank()
		if !ok {
			return Read{}, r.eof()
		}
		header = line
	}
	if header[0] != '@' {
		return Read{}, fmt.Errorf("line %d: expected header starting with @", r.line)
	}
	id, desc := splitHeader(header[1:])

	bases, ok := r.scan()
	if !ok {
		return Read{}, r.truncated()
	}
	bases = clone(bases)

	plus, ok := r.scan()
	if !ok {
		return Read{}, r.truncated()
	}
	if len(plus) == 0 || plus[0] != '+' {
		return Read{}, fmt.Errorf("line %d: expected '+' line", r.line)
	}

	qual, ok := r.scan()
	if !ok {
		return Read{}, r.truncated()
	}
	if len(qual) != len(bases) {
		return Read{}, fmt.Errorf("line %d: read %s has %d bases but %d quality characters", r.line, id, len(bases), len(qual))
	}
	return Read{ID: id, Description: desc, Sequence: bases, Quality: clone(qual)}, nil
}

func (r *Reader) nextFASTA() (Read, error) {
	header := r.header
	r.header = nil
	if header == nil {
		return Read{}, r.eof()
	}

	var bases []byte
	for {
		line, ok := r.scan()
		if !ok {
			if err := r.eof(); err != io.EOF {
				return Read{}, err
			}
			break
		}
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			r.header = clone(line)
			break
		}
		bases = append(bases, line...)
	}
	id, desc := splitHeader(header[1:])
	return Read{ID: id, Description: desc, Sequence: bases}, nil
}

func splitHeader(h []byte) (id, desc string) {
	s := strings.TrimSpace(string(h))
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

// ParseReads reads all records of r.
func ParseReads(r io.Reader) ([]Read, Format, error) {
	fr := NewReader(r)
	var reads []Read
	for {
		read, err := fr.Next()
		if err == io.EOF {
			return reads, fr.Format(), nil
		}
		if err != nil {
			return nil, fr.Format(), err
		}
		reads = append(reads, read)
	}
}

type gzipFile struct {
	*gzip.Reader
	f *os.File
}

func (g gzipFile) Close() error {
	err := g.Reader.Close()
	if ferr := g.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// Open opens a read file, decompressing it when its name ends in .gz. The
// name "-" is standard input.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening reads: %w", err)
	}
	if !strings.HasSuffix(path, ".gz") {
		return f, nil
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return gzipFile{Reader: gz, f: f}, nil
}

// ReadFile parses all records of a read file.
func ReadFile(path string) ([]Read, Format, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer rc.Close()

	reads, format, err := ParseReads(rc)
	if err != nil {
		return nil, format, fmt.Errorf("%s: %w", path, err)
	}
	return reads, format, nil
}

// Writer writes records in one format. Call Flush when done.
type Writer struct {
	w      *bufio.Writer
	format Format
	// LineWidth wraps FASTA bases; zero writes one line per record.
	LineWidth int
}

// NewWriter returns a buffered Writer.
func NewWriter(w io.Writer, format Format) *Writer {
	return &Writer{w: bufio.NewWriter(w), format: format}
}

func (w *Writer) header(marker byte, r Read) {
	w.w.WriteByte(marker)
	w.w.WriteString(r.ID)
	if r.Description != "" {
		w.w.WriteByte(' ')
		w.w.WriteString(r.Description)
	}
	w.w.WriteByte('\n')
}

// Write writes one record. FASTQ records need qualities.
func (w *Writer) Write(r Read) error {
	switch w.format {
	case FASTQ:
		if len(r.Quality) != len(r.Sequence) {
			return fmt.Errorf("read %s: %d bases but %d quality characters", r.ID, len(r.Sequence), len(r.Quality))
		}
		w.header('@', r)
		w.w.Write(r.Sequence)
		w.w.WriteString("\n+\n")
		w.w.Write(r.Quality)
		w.w.WriteByte('\n')
	case FASTA:
		w.header('>', r)
		seq := r.Sequence
		if w.LineWidth > 0 {
			for len(seq) > w.LineWidth {
				w.w.Write(seq[:w.LineWidth])
				w.w.WriteByte('\n')
				seq = seq[w.LineWidth:]
			}
		}
		w.w.Write(seq)
		w.w.WriteByte('\n')
	default:
		return fmt.Errorf("cannot write %s", w.format)
	}
	return nil
}

// WriteAll writes reads and flushes.
func (w *Writer) WriteAll(reads []Read) error {
	for _, r := range reads {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Flush writes buffered records to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
