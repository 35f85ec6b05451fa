package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/recera/knowledgemap/pkg/knowledge/graph"
	"github.com/recera/knowledgemap/pkg/live"
	"github.com/recera/knowledgemap/pkg/server"
)

func newServeCommand(flags *projectFlags) *cobra.Command {
	var port int
	var host string
	var noWatch bool
	var relax bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the map over HTTP",
		Long: `Serves the map as a server-rendered page kept in sync over a websocket.
Every browser tab gets its own layout. The document is reloaded when the
data file changes.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(flags)
			if err != nil {
				return err
			}
			srv := p.config.Server
			if cmd.Flags().Changed("port") {
				srv.Port = port
			}
			if cmd.Flags().Changed("host") {
				srv.Host = host
			}
			if cmd.Flags().Changed("relax") {
				srv.Relax = relax
			}
			if noWatch {
				off := false
				srv.Watch = &off
			}
			if err := p.config.Validate(); err != nil {
				return err
			}
			return runServe(p, flags.verbose)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Port to listen on")
	cmd.Flags().StringVarP(&host, "host", "H", "localhost", "Host to bind to")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Do not reload the data file on change")
	cmd.Flags().BoolVar(&relax, "relax", false, "Resolve overlaps when a session starts")

	return cmd
}

// originCheck accepts the configured origins, or any when none are set
func originCheck(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		if len(allowed) == 0 {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func runServe(p *project, verbose bool) error {
	doc, err := p.document()
	if err != nil {
		return err
	}

	cfg := p.config.Server
	app := server.NewApp(doc,
		[]server.AppOption{
			server.WithCanvasOptions(p.canvasOptions()...),
			server.WithRelax(cfg.Relax),
		},
		live.WithOriginCheck(originCheck(cfg.AllowedOrigins)),
		live.WithVerbose(verbose),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if p.config.Watching() {
		w, err := newReloader(p.dataPath, func(doc graph.Document) {
			app.SetDocument(doc)
			log.Printf("%s %s (%d topics)", color.GreenString("reloaded"), p.dataPath, len(doc.Topics))
		})
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", p.dataPath, err)
		}
		defer w.Close()
		go w.Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: app,
	}

	log.Printf("%s %d topics from %s", color.CyanString("knowledge map"), len(doc.Topics), p.dataPath)
	log.Printf("%s http://%s", color.New(color.Bold).Sprint("listening on"), addr)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println(color.YellowString("shutting down..."))
		cancel()

		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
