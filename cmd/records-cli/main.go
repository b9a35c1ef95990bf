package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorial-records/internal/command"
	"github.com/noah-isme/tutorial-records/internal/repository"
	"github.com/noah-isme/tutorial-records/internal/service"
	"github.com/noah-isme/tutorial-records/pkg/config"
	"github.com/noah-isme/tutorial-records/pkg/logger"
	"github.com/noah-isme/tutorial-records/pkg/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		logr.Sugar().Fatalw("records session failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger, in io.Reader, out io.Writer) error {
	dataStore, err := storage.NewLocalStorage(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("open data dir: %w", err)
	}
	exportStore, err := storage.NewLocalStorage(cfg.Storage.ExportDir)
	if err != nil {
		return fmt.Errorf("open export dir: %w", err)
	}

	store := repository.NewStore(nil)
	model := service.NewModel(store, service.Settings{
		MaxWeeks:        cfg.Records.MaxWeeks,
		DefaultMaxScore: cfg.Records.DefaultMaxScore,
	}, logr)
	snapshots := repository.NewSnapshotRepository(dataStore, cfg.Storage.DataFile, logr)
	metrics := service.NewMetricsService(store)

	if err := restore(ctx, model, snapshots, logr); err != nil {
		return err
	}

	persist := func(ctx context.Context) error {
		err := snapshots.Save(ctx, model.Export())
		metrics.ObserveSave(err)
		if cfg.Metrics.TextfilePath != "" {
			if werr := metrics.WriteTextfile(cfg.Metrics.TextfilePath); werr != nil {
				logr.Warn("metrics textfile not written", zap.Error(werr))
			}
		}
		return err
	}

	reports := service.NewReportService(model, exportStore, logr, nil, nil)
	dispatcher := command.NewDispatcher(model, reports, metrics, logr)

	var autosave command.PersistFunc
	if cfg.Persistence.Autosave {
		autosave = persist
	}
	session := command.NewSession(command.NewDecoder(nil), dispatcher, autosave, logr)

	logr.Sugar().Infow("records session starting",
		"env", cfg.Env,
		"data", dataStore.Path(cfg.Storage.DataFile),
		"exports", exportStore.Path(""),
		"autosave", cfg.Persistence.Autosave,
	)
	runErr := session.Run(ctx, in, out)

	if !cfg.Persistence.Autosave && session.Mutated() {
		// the signal context may already be done; the final save must still run
		if err := persist(context.Background()); err != nil {
			return fmt.Errorf("save records: %w", err)
		}
	}
	return runErr
}

// restore loads the saved snapshot into model. A snapshot that decodes but
// breaks record invariants is moved aside and the session starts empty.
func restore(ctx context.Context, model *service.Model, snapshots *repository.SnapshotRepository, logr *zap.Logger) error {
	snap, found, err := snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if !found {
		logr.Info("no saved records, starting empty")
		return nil
	}
	if err := model.Import(ctx, snap); err != nil {
		backup, qerr := snapshots.Quarantine()
		if qerr != nil {
			return fmt.Errorf("quarantine invalid records: %w", qerr)
		}
		logr.Warn("saved records invalid, starting empty", zap.String("backup", backup), zap.Error(err))
	}
	return nil
}
