// Package main provides the editor CLI: it loads HR-XML assignment exports,
// checks and edits their dates and writes the outbound packets.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	_ "time/tzdata"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"pilott-date-editor/internal/domain/entity"
	"pilott-date-editor/internal/infrastructure/config"
	"pilott-date-editor/internal/infrastructure/router"
	"pilott-date-editor/internal/interface/hrxml"
	"pilott-date-editor/internal/interface/xsd"
	"pilott-date-editor/internal/usecase"
	"pilott-date-editor/pkg/logger"
	"pilott-date-editor/pkg/metrics"
	"pilott-date-editor/pkg/utils"
	"pilott-date-editor/templates"
)

var version = "dev"

// app wires the editor and carries the per-invocation session
type app struct {
	cfg      *config.Config
	log      *logger.ZapLogger
	registry *prometheus.Registry
	editor   *usecase.AssignmentEditor
	session  *usecase.Session
}

func newApp() (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.NewLoggerWithLevel(cfg.LogLevel)
	log.Debug("Configuration loaded", "version", cfg.AppVersion, "xsdPath", cfg.XSDPath, "workers", cfg.LoadWorkers)

	registry := prometheus.NewRegistry()
	m := metrics.NewMetrics("pilott_editor", registry)

	reader := hrxml.NewReader(log)
	writer := hrxml.NewWriter(log)
	validator := xsd.NewXMLLintValidator(cfg.XSDPath, cfg.XMLLintPath, log)

	packetRouter := router.NewPacketRouter(log)
	packetRouter.Register(templates.NewUpdatePacketHandler(writer, log))
	packetRouter.Register(templates.NewStaffingActionHandler(writer, log))

	editor := usecase.NewAssignmentEditor(reader, writer, validator, packetRouter, m,
		usecase.EditorOptions{
			LoadWorkers: cfg.LoadWorkers,
			Schemas: map[entity.PacketKind]string{
				entity.PacketUpdate:         cfg.SchemaFor(entity.PacketUpdate),
				entity.PacketStaffingAction: cfg.SchemaFor(entity.PacketStaffingAction),
			},
		},
		log,
	)

	return &app{
		cfg:      cfg,
		log:      log,
		registry: registry,
		editor:   editor,
		session:  usecase.NewSession(utils.LoadDisplayLocation(cfg.DisplayTimezone)),
	}, nil
}

// load reads the given paths from disk and loads them into the session
func (a *app) load(ctx context.Context, paths []string) ([]usecase.LoadOutcome, error) {
	docs := make([]usecase.InputDocument, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		docs = append(docs, usecase.InputDocument{Filename: filepath.Base(p), Data: data})
	}
	return a.editor.LoadDocuments(ctx, a.session, docs)
}

// selectRecords returns the loaded records, or only the one named by id
func (a *app) selectRecords(id string) ([]*entity.AssignmentRecord, error) {
	if id == "" {
		return a.session.Records, nil
	}
	return selectByID(a.session, id)
}

// selectByID returns the single loaded record carrying id
func selectByID(session *usecase.Session, id string) ([]*entity.AssignmentRecord, error) {
	found := session.FindRecords(id)
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", usecase.ErrRecordNotFound, id)
	case 1:
		return found, nil
	default:
		files := make([]string, 0, len(found))
		for _, rec := range found {
			files = append(files, rec.SourceFilename)
		}
		return nil, fmt.Errorf("%w: %s (%s)", usecase.ErrAmbiguousRecord, id, strings.Join(files, ", "))
	}
}

// save writes a generated file to dir and optionally validates it
func (a *app) save(ctx context.Context, file *entity.GeneratedFile, dir string, validate bool) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, file.Filename)
	if err := os.WriteFile(path, file.Content, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	a.log.Info("File written", "path", path, "bytes", len(file.Content))

	if validate {
		if err := a.editor.ValidateOutput(ctx, a.session, file, path); err != nil {
			return path, err
		}
	}
	return path, nil
}

// finish prints the operation log and flushes metrics and logs
func (a *app) finish(cmd *cobra.Command) {
	printMessages(cmd.OutOrStdout(), a.session.Messages)

	if a.cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(a.cfg.MetricsTextfile, a.registry); err != nil {
			a.log.Warn("Failed to write metrics textfile", "path", a.cfg.MetricsTextfile, "error", err)
		}
	}
	_ = a.log.Sync()
}

func main() {
	var current *app

	rootCmd := &cobra.Command{
		Use:   "editor",
		Short: "Date editor for HR-XML staffing assignments",
		Long: `editor loads ASS_*_A_ETT.xml assignment exports, computes their flexibility
window, checks date coherence and generates assignment update (AU) and
flexibility use (SA) packets encoded in ISO-8859-1.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			current = a
			return nil
		},
	}

	appFn := func() *app { return current }
	rootCmd.AddCommand(newCheckCmd(appFn))
	rootCmd.AddCommand(newUpdateCmd(appFn))
	rootCmd.AddCommand(newFlexCmd(appFn))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
