// Command nanotrim finds and trims adapters in nanopore reads.
//
// Usage:
//
//	nanotrim [command] [options]
//
// Commands:
//
//	align       Align an adapter against a sequence
//	trim        Trim adapters from a FASTQ/FASTA file
//	revcomp     Reverse complement sequences
//	catalog     Print the adapter catalog as YAML
//	version     Show version information
//
// Settings are read from ./nanotrim.yaml or the file given with --settings,
// then from NANOTRIM_ environment variables (NANOTRIM_TRIM_WINDOW=150) and
// finally from flags.
package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aria-lang/nanotrim/internal/config"
	"github.com/aria-lang/nanotrim/pkg/nanotrim"
)

// app carries the state shared by the commands of one invocation.
type app struct {
	v        *viper.Viper
	settings string
}

// load binds the named flags of cmd to settings keys and unmarshals the
// settings. Binding happens per command because commands share keys.
func (a *app) load(cmd *cobra.Command, keys map[string]string) (config.Config, error) {
	for key, name := range keys {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return config.Config{}, err
		}
	}
	c, err := config.Load(a.v, a.settings)
	if err != nil {
		return config.Config{}, err
	}
	if !c.Verbose {
		log.SetOutput(discard{})
	} else {
		log.SetOutput(cmd.ErrOrStderr())
	}
	return c, nil
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func newRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "nanotrim",
		Short: "Find and trim adapter sequences in nanopore reads",
		Long: `
Find ligation, rapid and barcode adapters at both ends of nanopore reads
with a local aligner and keep the insert between them. Reads in reverse
orientation are written reverse complemented.`,
		Version:       nanotrim.Version(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&a.settings, "settings", "", "settings file (default ./nanotrim.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log progress to stderr")
	a.v.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose"))

	root.AddCommand(
		newAlignCmd(a),
		newTrimCmd(a),
		newRevcompCmd(),
		newCatalogCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Show version information",
			Run: func(cmd *cobra.Command, args []string) {
				cmd.Print(nanotrim.Info())
			},
		},
	)
	return root
}

// scoreFlags adds the alignment score flags and returns their settings keys.
func scoreFlags(cmd *cobra.Command) map[string]string {
	cmd.Flags().String("preset", "default", "score preset: default or nanopore")
	cmd.Flags().Int("match", 0, "match score (> 0, 0 keeps the preset)")
	cmd.Flags().Int("mismatch", 0, "mismatch score (< 0, 0 keeps the preset)")
	cmd.Flags().Int("gap-open", 0, "gap open score (< 0, 0 keeps the preset)")
	cmd.Flags().Int("gap-extend", 0, "gap extend score (< 0, 0 keeps the preset)")
	return map[string]string{
		"scores.preset":     "preset",
		"scores.match":      "match",
		"scores.mismatch":   "mismatch",
		"scores.gap-open":   "gap-open",
		"scores.gap-extend": "gap-extend",
	}
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := newRootCmd().Execute(); err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("%v", err)
	}
}
