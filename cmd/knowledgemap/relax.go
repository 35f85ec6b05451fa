package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

func newRelaxCommand(flags *projectFlags) *cobra.Command {
	var out string
	var write bool

	cmd := &cobra.Command{
		Use:   "relax",
		Short: "Push overlapping topics apart",
		Long: `Resolves every overlap in the document and reports the topics that moved.
The result is written to --out, or back to the data file with --write.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if out != "" && write {
				return fmt.Errorf("--out and --write are exclusive")
			}
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			doc, err := p.document()
			if err != nil {
				return err
			}

			store := graph.New(doc)
			moved := physics.NewEngine(store, p.physics()).Relax()

			w := cmd.OutOrStdout()
			if moved.Len() == 0 {
				fmt.Fprintln(w, color.GreenString("no overlaps"))
			} else {
				fmt.Fprintf(w, "moved %d topics\n", moved.Len())
				for _, id := range moved.IDs() {
					pos, _ := store.Position(id)
					fmt.Fprintf(w, "  %s (%.0f, %.0f)\n", id, pos.X, pos.Y)
				}
			}

			if write {
				out = p.dataPath
			}
			if out == "" {
				return nil
			}
			if err := graph.SaveDocument(out, store.Export()); err != nil {
				return err
			}
			fmt.Fprintf(w, "wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the relaxed document to this file")
	cmd.Flags().BoolVarP(&write, "write", "w", false, "Overwrite the data file")

	return cmd
}
