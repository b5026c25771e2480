package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/aria-lang/nanotrim/internal/batch"
	"github.com/aria-lang/nanotrim/internal/stats"
	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

var trimLong = `
Search every read for the 5' and 3' adapters of the selected definitions,
in catalog order, and write the insert between them. Reads whose adapters
are found in reverse orientation are written reverse complemented.

The built-in catalog holds the ligation and rapid adapters and native
barcodes NB01 to NB03; use --catalog to load a YAML catalog instead.`

func newTrimCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:                        "trim <reads>",
		Short:                      "Trim adapters from a FASTQ/FASTA file",
		Long:                       trimLong,
		Args:                       cobra.ExactArgs(1),
		SuggestionsMinimumDistance: 2,
	}
	keys := scoreFlags(cmd)

	flags := cmd.Flags()
	out := flags.StringP("out", "o", "-", "output read file (- for stdout)")
	format := flags.String("format", "", "output format: fastq or fasta (default: input format)")
	report := flags.String("report", "", "write a per-read TSV report to this file")
	progress := flags.Bool("progress", false, "show a progress bar on stderr")
	histogram := flags.Int("histogram", 0, "print a histogram of trimmed lengths with this many bins")

	flags.String("catalog", "", "YAML adapter catalog (default: built-in)")
	flags.StringSliceP("definitions", "d", nil, "definitions to search for, in priority order")
	flags.Int("length", 0, "override the expected adapter length of every end")
	flags.Float64("coverage", 0, "override the minimum coverage of every end")
	flags.Float64("identity", 0, "override the minimum identity of every end")
	flags.IntP("window", "w", 0, "search adapters within this many bases of each read end (0: whole read)")
	flags.Bool("require-both-ends", true, "drop boundaries that do not cut both ends")
	flags.Bool("keep-untrimmed", false, "write reads without adapters unchanged")
	flags.Int("quality-trim", 0, "trim bases below this quality from both ends of trimmed reads")
	flags.IntP("workers", "t", 0, "number of workers (0: all CPUs)")
	flags.Int("min-length", 100, "minimum length of written reads")
	flags.Float64("min-quality", 7, "minimum mean quality of written reads")
	flags.Int("max-degenerate", -1, "maximum number of degenerate bases in written reads (-1: no limit)")
	flags.Bool("no-filter", false, "write every trimmed read regardless of length and quality")

	for key, name := range map[string]string{
		"trim.catalog":           "catalog",
		"trim.definitions":       "definitions",
		"trim.length":            "length",
		"trim.coverage":          "coverage",
		"trim.identity":          "identity",
		"trim.window":            "window",
		"trim.require-both-ends": "require-both-ends",
		"trim.keep-untrimmed":    "keep-untrimmed",
		"trim.quality-trim":      "quality-trim",
		"trim.workers":           "workers",
		"filter.min-length":      "min-length",
		"filter.min-quality":     "min-quality",
		"filter.max-degenerate":  "max-degenerate",
		"filter.disabled":        "no-filter",
	} {
		keys[key] = name
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, keys)
		if err != nil {
			return err
		}
		defs, err := c.Definitions()
		if err != nil {
			return err
		}
		bc, err := c.Batch()
		if err != nil {
			return err
		}

		start := time.Now()
		reads, inFormat, err := nanotrim.ReadFile(args[0])
		if err != nil {
			return err
		}
		outFormat := inFormat
		if *format != "" {
			if outFormat, err = nanotrim.ParseFormat(*format); err != nil {
				return err
			}
		}
		if outFormat == nanotrim.FASTQ && inFormat == nanotrim.FASTA {
			return fmt.Errorf("cannot write fastq from fasta input")
		}
		log.Printf("read %s reads from %s in %s", humanize.Comma(int64(len(reads))), args[0], time.Since(start).Round(time.Millisecond))

		var bar *pb.ProgressBar
		if *progress && len(reads) > 0 {
			bar = pb.Full.New(len(reads))
			bar.SetWriter(cmd.ErrOrStderr())
			bar.Start()
			bc.Progress = func(n int) { bar.Add(n) }
		}

		ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
		defer stop()
		result, err := batch.Run(ctx, bc, defs, reads)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			return err
		}
		log.Printf("run %s: trimmed %s reads in %s", result.RunID, humanize.Comma(result.Summary.Trimmed()), time.Since(start).Round(time.Millisecond))

		if err := writeReads(cmd, *out, outFormat, result.Reads); err != nil {
			return err
		}
		if *report != "" {
			if err := writeReport(*report, reads, result); err != nil {
				return err
			}
		}

		errOut := cmd.ErrOrStderr()
		fmt.Fprint(errOut, result.Summary)
		if len(result.Reads) > 0 {
			ls, err := stats.FromLengths(result.Lengths())
			if err != nil {
				return err
			}
			fmt.Fprintln(errOut, ls)
			if *histogram > 0 {
				h, err := stats.NewLengthHistogram(result.Lengths(), *histogram)
				if err != nil {
					return err
				}
				fmt.Fprint(errOut, h)
			}
		}
		return nil
	}
	return cmd
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeReads(cmd *cobra.Command, path string, format nanotrim.Format, reads []nanotrim.Read) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating output: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := nanotrim.NewWriter(w, format).WriteAll(reads); err != nil {
		return fmt.Errorf("writing reads: %w", err)
	}
	return nil
}

// writeReport writes one line per input read: id, status, definition,
// orientation, the kept range and whether the written read was trimmed.
func writeReport(path string, reads []nanotrim.Read, result *batch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintf(w, "# run %s\n", result.RunID)
	fmt.Fprintln(w, "read\tstatus\tdefinition\tstrand\tstart\tend\tlength\ttrimmed\treason")
	for i, o := range result.Outcomes {
		def, strand, start, end := "-", ".", "-", "-"
		if o.Definition != "" {
			def, strand = o.Definition, "+"
			if o.Boundary.ReverseComplement {
				strand = "-"
			}
			start, end = fmt.Sprint(o.Boundary.Start), fmt.Sprint(o.Boundary.End)
		}
		trimmed := "no"
		if result.Trimmed.Test(uint(i)) {
			trimmed = "yes"
		}
		reason := o.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			reads[i].ID, o.Status, def, strand, start, end, len(reads[i].Sequence), trimmed, reason)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return f.Close()
}
