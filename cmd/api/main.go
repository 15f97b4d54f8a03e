package main

import (
	"context"
	"flag"
	"moviecatalog/proj/internal/api/tasks"
	"moviecatalog/proj/internal/config"
	"moviecatalog/proj/internal/lib/logger"
	"moviecatalog/proj/internal/mails"
	"moviecatalog/proj/internal/services"
	"moviecatalog/proj/internal/services/auth"
	"moviecatalog/proj/internal/storage/postgres"
	pgmodels "moviecatalog/proj/internal/storage/postgres/models"
	"moviecatalog/proj/internal/storage/posters"
	"os"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")
	flag.Parse()

	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DB.ConnectTimeout)
	defer cancel()
	storage, err := postgres.New(ctx, cfg.DB.Dsn, cfg.DB.MaxConns, cfg.DB.MaxConnIdleTime)
	if err != nil {
		log.Error("failed to connect to database", "errMsg", err.Error())
		os.Exit(1)
	}
	defer storage.Close()
	if err := storage.Migrate(ctx); err != nil {
		log.Error("failed to apply schema", "errMsg", err.Error())
		os.Exit(1)
	}
	log.Info("database connection established")

	posterStore, err := posters.New(cfg.Uploads.Root, cfg.Uploads.MaxPosterSize)
	if err != nil {
		log.Error("failed to prepare uploads directory", "errMsg", err.Error())
		os.Exit(1)
	}

	var mailer auth.MailProvider
	if cfg.SMTPServer.Host != "" {
		mailer = mails.New(
			cfg.SMTPServer.Host,
			cfg.SMTPServer.Port,
			cfg.SMTPServer.Timeout,
			cfg.SMTPServer.Username,
			cfg.SMTPServer.Password,
			cfg.SMTPServer.Sender,
			cfg.SMTPServer.RetriesCount,
		)
	} else {
		log.Warn("smtp host is not configured, welcome emails are disabled")
	}

	backgroundTasks := tasks.New(log, cfg.Tasks.MaxWorkers, cfg.Tasks.MaxQueueSize)
	backgroundTasks.Run()

	models := pgmodels.New(storage)
	svcs, err := services.New(log, cfg, services.Storage{
		Accounts: models.Account,
		Movies:   models.Movie,
		Reviews:  models.Review,
		Posters:  posterStore,
	}, mailer, backgroundTasks)
	if err != nil {
		log.Error("failed to build services", "errMsg", err.Error())
		os.Exit(1)
	}

	app := NewApplication(cfg, log, svcs, backgroundTasks)
	if err := app.serve(); err != nil {
		log.Error("server stopped with error", "errMsg", err.Error())
		os.Exit(1)
	}
}
