package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/timesheet/internal/cli"
	"github.com/alexanderramin/timesheet/internal/config"
	"github.com/alexanderramin/timesheet/internal/db"
	"github.com/alexanderramin/timesheet/internal/repository"
	"github.com/alexanderramin/timesheet/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	database, err := db.OpenDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	var observer service.UseCaseObserver = service.NoopUseCaseObserver{}
	level := slog.LevelWarn
	if cfg.Log.UseCases {
		observer = service.NewLogUseCaseObserver(os.Stderr)
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	// Wire repositories
	entryRepo := repository.NewSQLiteEntryRepo(database)
	userRepo := repository.NewSQLiteUserRepo(database)
	clientRepo := repository.NewSQLiteClientRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)

	uow := db.NewSQLiteUnitOfWork(database)

	app := &cli.App{
		Entries:    service.NewEntryService(entryRepo, userRepo, uow, observer),
		Reports:    service.NewReportService(entryRepo, observer),
		Users:      service.NewUserService(userRepo, observer),
		Clients:    service.NewClientService(clientRepo, uow, observer),
		Activities: service.NewActivityService(activityRepo),
		Config:     cfg,
		Logger:     logger,
	}

	// The ledger editor only runs on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
