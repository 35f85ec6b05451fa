package main

import (
	"fmt"
	"path/filepath"

	"github.com/recera/knowledgemap/cmd/knowledgemap/internal/config"
	"github.com/recera/knowledgemap/pkg/knowledge/canvas"
	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

// projectFlags are the persistent flags locating the project
type projectFlags struct {
	dir    string
	config string
	data   string

	verbose bool
}

// project is a loaded config with its resolved data file
type project struct {
	config   *config.Config
	dataPath string
}

func loadProject(flags *projectFlags) (*project, error) {
	path := flags.config
	if path == "" {
		path = filepath.Join(flags.dir, config.FileName)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	p := &project{config: cfg, dataPath: cfg.DataPath(filepath.Dir(path))}
	if flags.data != "" {
		p.dataPath = flags.data
	}
	return p, nil
}

func (p *project) document() (graph.Document, error) {
	return graph.LoadDocument(p.dataPath)
}

func (p *project) physics() physics.Config {
	if p.config.Physics == nil {
		return physics.DefaultConfig()
	}
	return *p.config.Physics
}

// canvasOptions turns the view and physics settings into canvas options
func (p *project) canvasOptions() []canvas.Option {
	view := p.config.View
	opts := []canvas.Option{
		canvas.WithPhysics(p.physics()),
		canvas.WithZoomBounds(view.MinZoom, view.MaxZoom),
		canvas.WithIdle(p.config.IdleMotion()),
	}
	if view.Home != "" {
		opts = append(opts, canvas.WithHome(view.Home))
	}
	return opts
}
