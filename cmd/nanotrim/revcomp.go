package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aria-lang/nanotrim/internal/sequence"
	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

func newRevcompCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "revcomp [sequence ...]",
		Short: "Reverse complement sequences or a read file",
		Long: `
Reverse complement IUPAC sequences given as arguments, or every record of a
FASTQ/FASTA file with --in. Qualities of FASTQ records are reversed.`,
		SuggestionsMinimumDistance: 2,
	}
	in := cmd.Flags().StringP("in", "i", "", "input read file (- for stdin)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if *in == "" {
			if len(args) == 0 {
				return fmt.Errorf("give sequences as arguments or a file with --in")
			}
			for _, arg := range args {
				rc, err := nanotrim.ReverseComplement([]byte(arg))
				if err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
				fmt.Fprintln(out, string(rc))
			}
			return nil
		}

		reads, format, err := nanotrim.ReadFile(*in)
		if err != nil {
			return err
		}
		w := nanotrim.NewWriter(out, format)
		for _, r := range reads {
			rc, err := nanotrim.ReverseComplement(r.Sequence)
			if err != nil {
				return fmt.Errorf("read %s: %w", r.ID, err)
			}
			r.Sequence = rc
			if r.Quality != nil {
				r.Quality = sequence.Reverse(r.Quality)
			}
			if err := w.Write(r); err != nil {
				return err
			}
		}
		return w.Flush()
	}
	return cmd
}
