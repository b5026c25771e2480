package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

func newAlignCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "align <query> <target>",
		Short: "Align a query (adapter) against a target (read)",
		Long: `
Find the best local alignment of the query within the target and print it
with the matched ranges, identity and CIGAR.`,
		Args:                       cobra.ExactArgs(2),
		SuggestionsMinimumDistance: 2,
	}
	keys := scoreFlags(cmd)
	fromEnd := cmd.Flags().Bool("from-end", false, "count target coordinates from its end (3' adapters)")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := a.load(cmd, keys)
		if err != nil {
			return err
		}
		scores, err := c.AlignmentScores()
		if err != nil {
			return err
		}

		query, target := []byte(strings.ToUpper(args[0])), []byte(strings.ToUpper(args[1]))
		aln, err := nanotrim.Align(query, target, scores)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, aln)
		if *fromEnd {
			fmt.Fprint(out, aln.PrettyFromEnd(query, target))
		} else {
			fmt.Fprint(out, aln.Pretty(query, target))
		}
		return nil
	}
	return cmd
}
