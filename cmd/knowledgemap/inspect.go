package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

func newInspectCommand(flags *projectFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "Report on the layout of the map",
		Long:  `Loads the document and reports its size, overlapping topics and stretched links.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			doc, err := p.document()
			if err != nil {
				return err
			}
			inspect(cmd.OutOrStdout(), graph.New(doc), p.physics())
			return nil
		},
	}
}

func inspect(w io.Writer, store *graph.Store, cfg physics.Config) {
	laned := 0
	for _, l := range store.Links() {
		if l.LaneCount > 1 {
			laned++
		}
	}

	bold := color.New(color.Bold)
	bold.Fprintf(w, "topics   ")
	fmt.Fprintf(w, "%d\n", store.Len())
	bold.Fprintf(w, "links    ")
	fmt.Fprintf(w, "%d (%d in parallel lanes)\n", len(store.Links()), laned)

	bold.Fprintf(w, "overlaps ")
	if n := physics.Overlaps(store, cfg); n > 0 {
		color.New(color.FgYellow).Fprintf(w, "%d", n)
		fmt.Fprintln(w, " pairs, run relax to resolve")
	} else {
		color.New(color.FgGreen).Fprintln(w, "none")
	}

	ratios := physics.StretchRatios(store, cfg)
	bold.Fprintf(w, "stretch  ")
	if len(ratios) == 0 {
		color.New(color.FgGreen).Fprintln(w, "none")
		return
	}
	fmt.Fprintf(w, "%d links\n", len(ratios))

	ids := make([]string, 0, len(ratios))
	for id := range ratios {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		l, _ := store.Link(id)
		fmt.Fprintf(w, "  %s -> %s  ", l.Source, l.Target)
		color.New(color.FgYellow).Fprintf(w, "%.2f\n", ratios[id])
	}
}
