package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/recera/knowledgemap/cmd/knowledgemap/internal/ui"
	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
)

func newExploreCommand(flags *projectFlags) *cobra.Command {
	var relax bool

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the map in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			doc, err := p.document()
			if err != nil {
				return err
			}

			c := canvas.New(graph.New(doc), p.canvasOptions()...)
			defer c.Dispose()
			if relax || p.config.Server.Relax {
				c.Relax()
			}

			program := tea.NewProgram(ui.New(c), tea.WithAltScreen(), tea.WithMouseCellMotion())
			_, err = program.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&relax, "relax", false, "Resolve overlaps before exploring")

	return cmd
}
