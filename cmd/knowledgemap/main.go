package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/recera/knowledgemap/pkg/debug"
)

var (
	version = "0.1.0-preview"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := &projectFlags{}

	rootCmd := &cobra.Command{
		Use:   "knowledgemap",
		Short: "Knowledge Map - an explorable map of linked topics",
		Long: `knowledgemap serves, inspects and explores a map of topics joined by links.
Topics can be dragged around; neighbours follow along when a link is
stretched too far and overlapping topics are pushed apart.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.verbose {
				debug.EnableLogging()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.dir, "dir", "C", ".", "Project directory holding knowledgemap.yaml")
	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "", "Config file (defaults to <dir>/knowledgemap.yaml)")
	rootCmd.PersistentFlags().StringVarP(&flags.data, "data", "d", "", "Map document, overriding the config")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Log layout and interaction details")

	rootCmd.AddCommand(newServeCommand(flags))
	rootCmd.AddCommand(newInspectCommand(flags))
	rootCmd.AddCommand(newRelaxCommand(flags))
	rootCmd.AddCommand(newExploreCommand(flags))

	return rootCmd
}
