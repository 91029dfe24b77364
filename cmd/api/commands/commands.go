package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/seminarhub/core/internal/adapters/repository"
	"github.com/seminarhub/core/internal/client"
	"github.com/seminarhub/core/internal/domain/entities"
	"github.com/seminarhub/core/internal/domain/validation"
	"github.com/seminarhub/core/internal/infrastructure/config"
	"github.com/seminarhub/core/internal/infrastructure/logger"
	"github.com/seminarhub/core/internal/infrastructure/server"
	"github.com/seminarhub/core/internal/infrastructure/storage"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Seminars API server",
		Long:  "Load and validate the seminars file, then serve the REST API until interrupted",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create an empty seminars file",
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			return initDataFile(cmd.OutOrStdout(), force)
		},
	}

	initCmd.Flags().Bool("force", false, "Overwrite an existing seminars file")
	return initCmd
}

// NewCheckCommand creates the check command
func NewCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the seminars file without serving it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return checkDataFile(cmd.OutOrStdout())
		},
	}
}

// NewSeminarsCommand creates the client commands that talk to a running server
func NewSeminarsCommand() *cobra.Command {
	seminarsCmd := &cobra.Command{
		Use:   "seminars",
		Short: "Manage seminars on a running server",
	}

	seminarsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all seminars",
		RunE: func(cmd *cobra.Command, args []string) error {
			return listSeminars(cmd.Context(), cmd.OutOrStdout())
		},
	})

	seminarsCmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one seminar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid seminar id %q", args[0])
			}
			return getSeminar(cmd.Context(), cmd.OutOrStdout(), id)
		},
	})

	seminarsCmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a seminar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid seminar id %q", args[0])
			}
			return deleteSeminar(cmd.Context(), cmd.OutOrStdout(), id)
		},
	})

	return seminarsCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Seminars version",
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err != nil {
				log.Fatalf("Failed to load configuration: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", cfg.App.Name, cfg.App.Version)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	dataFile, err := storage.Open(cfg.Storage)
	if err != nil {
		appLogger.WithError(err).Fatalw("Seminars file is not available", "path", cfg.Storage.File)
	}

	srv, err := server.New(cfg, dataFile, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatalw("Failed to initialize server")
	}

	appLogger.Infow("Starting Seminars API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage", dataFile.Path(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(cfg.Server.GetAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatalw("Server failed to start")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
	}
}

func initDataFile(out io.Writer, force bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dataFile := storage.New(cfg.Storage)
	exists, err := dataFile.Exists()
	if err != nil {
		return err
	}
	if exists && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", dataFile.Path())
	}

	repo := repository.NewSeminarRepository(dataFile, validation.New(), logger.NewNop())
	if err := repo.Initialize(context.Background()); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created %s\n", dataFile.Path())
	return nil
}

func checkDataFile(out io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dataFile := storage.New(cfg.Storage)
	repo := repository.NewSeminarRepository(dataFile, validation.New(), logger.NewNop())
	if err := repo.Load(context.Background()); err != nil {
		return err
	}

	fmt.Fprintf(out, "%s is valid: %d seminars\n", dataFile.Path(), repo.Count())
	return nil
}

func newAPIClient() (*client.Client, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(config.LoggerConfig{Level: "warn", Format: "console"})
	if err != nil {
		return nil, nil, err
	}

	return client.New(cfg.Client.BaseURL, cfg.Client.Timeout), appLogger, nil
}

func listSeminars(ctx context.Context, out io.Writer) error {
	api, appLogger, err := newAPIClient()
	if err != nil {
		return err
	}

	list := client.NewSeminarList(api, appLogger)
	if err := list.Load(ctx); err != nil {
		fmt.Fprintln(out, client.LoadErrorMessage)
		return err
	}

	printSeminars(out, list.State().Visible())
	return nil
}

func getSeminar(ctx context.Context, out io.Writer, id int) error {
	api, _, err := newAPIClient()
	if err != nil {
		return err
	}

	seminar, err := api.Get(ctx, id)
	if err != nil {
		return err
	}

	printSeminars(out, []entities.Seminar{*seminar})
	if seminar.Description != nil {
		fmt.Fprintf(out, "\n%s\n", *seminar.Description)
	}
	return nil
}

func deleteSeminar(ctx context.Context, out io.Writer, id int) error {
	api, appLogger, err := newAPIClient()
	if err != nil {
		return err
	}

	list := client.NewSeminarList(api, appLogger)
	if err := list.Delete(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(out, "Deleted seminar %d\n", id)
	return nil
}

func printSeminars(out io.Writer, seminars []entities.Seminar) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tDATE\tTIME\tPHOTO")
	for _, s := range seminars {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ID, s.Title, s.Date, s.Time, s.Photo)
	}
	w.Flush()
}
