package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rpggio/crmdesk/internal/config"
	"github.com/rpggio/crmdesk/internal/domain/activity"
	"github.com/rpggio/crmdesk/internal/domain/apikey"
	"github.com/rpggio/crmdesk/internal/domain/client"
	"github.com/rpggio/crmdesk/internal/domain/copilot"
	"github.com/rpggio/crmdesk/internal/domain/invoice"
	"github.com/rpggio/crmdesk/internal/domain/jump"
	"github.com/rpggio/crmdesk/internal/domain/project"
	"github.com/rpggio/crmdesk/internal/domain/reference"
	"github.com/rpggio/crmdesk/internal/domain/referral"
	"github.com/rpggio/crmdesk/internal/sqlite"
	"github.com/rpggio/crmdesk/internal/transport"
	"github.com/rpggio/crmdesk/internal/uploads"
	"github.com/spf13/cobra"
)

// referenceCacheTTL bounds how stale a reference lookup can be after a
// write from another process.
const referenceCacheTTL = 5 * time.Minute

func main() {
	a := &app{}
	err := rootCommand(a).Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfgPath string
	cfg     config.Config
	logger  *slog.Logger
	closers []io.Closer
}

func rootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "crmdesk",
		Short:         "Client, project and invoicing API for small agencies",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.SetErrPrefix("crmdesk:")
	root.PersistentFlags().StringVar(&a.cfgPath, "config", os.Getenv("CRMDESK_CONFIG_PATH"), "YAML config file")

	root.AddCommand(
		serveCommand(a),
		migrateCommand(a),
		apiKeyCommand(a),
		idsCommand(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.LoadFile(a.cfgPath)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	a.cfg = cfg

	logWriter := io.Writer(os.Stderr)
	if cfg.Log.Path != "" {
		fileWriter, file, err := newLogFileWriter(cfg.Log.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			a.closers = append(a.closers, file)
			logWriter = fileWriter
		}
	}
	a.logger = slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i].Close()
	}
	a.closers = nil
}

// openDB opens and migrates the configured database. It is closed with the app.
func (a *app) openDB(ctx context.Context) (*sqlite.DB, error) {
	if err := ensureDBDir(a.cfg.DB.Path); err != nil {
		a.logger.Error("failed to prepare database path", "error", err)
		return nil, err
	}

	db, err := sqlite.New(a.cfg.DB.Path)
	if err != nil {
		a.logger.Error("failed to open database", "error", err)
		return nil, err
	}
	a.closers = append(a.closers, db)

	if err := db.Migrate(ctx); err != nil {
		a.logger.Error("failed to run migrations", "error", err)
		return nil, err
	}
	return db, nil
}

func (a *app) services(db *sqlite.DB) (transport.Services, error) {
	store, err := uploads.NewStore(a.cfg.Uploads.Dir, a.cfg.Uploads.MaxSizeBytes)
	if err != nil {
		return transport.Services{}, err
	}

	logger := a.logger
	activitySvc := activity.NewService(sqlite.NewActivityRepository(db), logger)
	referenceSvc := reference.NewService(sqlite.NewReferenceRepository(db), referenceCacheTTL, logger)

	return transport.Services{
		Clients:   client.NewService(sqlite.NewClientRepository(db), referenceSvc, activitySvc, logger),
		Jumps:     jump.NewService(sqlite.NewJumpRepository(db), referenceSvc, activitySvc, logger),
		Projects:  project.NewService(sqlite.NewProjectRepository(db), sqlite.NewTaskRepository(db), referenceSvc, activitySvc, logger),
		Invoices:  invoice.NewService(sqlite.NewInvoiceRepository(db), referenceSvc, activitySvc, logger),
		Copilots:  copilot.NewService(sqlite.NewCopilotRepository(db), referenceSvc, activitySvc, logger),
		Referrals: referral.NewService(sqlite.NewReferralRepository(db), referenceSvc, activitySvc, logger),
		APIKeys:   apikey.NewService(sqlite.NewAPIKeyRepository(db), activitySvc, logger),
		Reference: referenceSvc,
		Activity:  activitySvc,
		Uploads:   store,
	}, nil
}

func serveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			svc, err := a.services(db)
			if err != nil {
				a.logger.Error("failed to prepare uploads", "error", err)
				return err
			}

			if !a.cfg.Auth.Enabled {
				a.logger.Warn("authentication disabled; every request runs as admin")
			}
			handler := transport.NewServer(svc, transport.Options{
				AuthEnabled: a.cfg.Auth.Enabled,
				CORS:        a.cfg.CORS,
				RateLimit:   a.cfg.RateLimit,
				Logger:      a.logger,
			})

			httpServer := &http.Server{
				Addr:              a.cfg.Addr(),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				a.logger.Info("server listening", "addr", httpServer.Addr)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			if err := waitForShutdown(a.logger, httpServer, errc); err != nil {
				a.logger.Error("server error", "error", err)
				return err
			}
			return nil
		},
	}
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// waitForShutdown blocks until a signal arrives or the server stops on its own.
func waitForShutdown(logger *slog.Logger, server *http.Server, errc <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case <-stop:
	case err := <-errc:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	return <-errc
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
