// Package wire provides dependency injection for the confer application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/confer/internal/adapters/cli"
	"github.com/example/confer/internal/adapters/email"
	"github.com/example/confer/internal/adapters/postgres"
	"github.com/example/confer/internal/adapters/sqlite"
	"github.com/example/confer/internal/app"
	"github.com/example/confer/internal/config"
	"github.com/example/confer/internal/db"
	"github.com/example/confer/internal/logger"
	"github.com/example/confer/internal/ports/primary"
	"github.com/example/confer/internal/ports/secondary"
)

var (
	cfg             = defaultConfig()
	reviewerService primary.ReviewerService
	logService      primary.LogService
	once            sync.Once
)

func defaultConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "sqlite"},
		Log:      config.LogConfig{Level: "warn", Format: "text"},
	}
}

// Configure installs the loaded configuration. Call before any service accessor.
func Configure(c *config.Config) {
	cfg = c
	logger.Setup(logger.Config{Level: c.Log.Level, Format: c.Log.Format}, os.Stderr)
}

// Config returns the active configuration.
func Config() *config.Config {
	return cfg
}

// Database returns the shared connection and its driver, creating the schema on first use.
func Database() (*sql.DB, db.Driver, error) {
	d, err := db.ParseDriver(cfg.Database.Driver)
	if err != nil {
		return nil, "", err
	}
	db.Configure(d, cfg.Database.DataSource())
	database, err := db.GetDB()
	if err != nil {
		return nil, "", err
	}
	return database, d, nil
}

// ReviewerService returns the singleton ReviewerService instance.
func ReviewerService() primary.ReviewerService {
	once.Do(initServices)
	return reviewerService
}

// LogService returns the singleton LogService instance.
func LogService() primary.LogService {
	once.Do(initServices)
	return logService
}

type repositories struct {
	reviewers  secondary.ReviewerRepository
	directory  secondary.UserDirectory
	organizers secondary.OrganizerChecker
	auditLogs  secondary.AuditLogRepository
}

func newRepositories(database *sql.DB, d db.Driver) repositories {
	if d == db.DriverPostgres {
		return repositories{
			reviewers:  postgres.NewReviewerRepository(database),
			directory:  postgres.NewUserDirectory(database),
			organizers: postgres.NewOrganizerRepository(database),
			auditLogs:  postgres.NewAuditLogRepository(database),
		}
	}
	return repositories{
		reviewers:  sqlite.NewReviewerRepository(database),
		directory:  sqlite.NewUserDirectory(database),
		organizers: sqlite.NewOrganizerRepository(database),
		auditLogs:  sqlite.NewAuditLogRepository(database),
	}
}

func newNotifier(c config.EmailConfig, l *slog.Logger) secondary.NotificationPort {
	if !c.Enabled {
		return email.NewLogNotifier(c.InvitationURL, l)
	}
	return email.NewSMTPNotifier(email.SMTPConfig{
		Host:          c.SMTPHost,
		Port:          c.SMTPPort,
		Username:      c.SMTPUsername,
		Password:      c.SMTPPassword,
		From:          c.From,
		InvitationURL: c.InvitationURL,
	}, l)
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, d, err := Database()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	l := slog.Default()
	repos := newRepositories(database, d)
	logWriter := app.NewAuditLogWriter(repos.auditLogs)
	executor := app.NewEffectExecutor(repos.directory, newNotifier(cfg.Email, l), l)

	reviewerService = app.NewReviewerService(repos.reviewers, repos.directory, repos.organizers, logWriter, executor, l)
	logService = app.NewLogService(repos.auditLogs)
}

// ReviewerAdapter returns a new ReviewerAdapter writing to stdout.
func ReviewerAdapter() *cliadapter.ReviewerAdapter {
	return ReviewerAdapterWithOutput(os.Stdout)
}

// ReviewerAdapterWithOutput returns a new ReviewerAdapter writing to the given output.
func ReviewerAdapterWithOutput(out io.Writer) *cliadapter.ReviewerAdapter {
	once.Do(initServices)
	return cliadapter.NewReviewerAdapter(reviewerService, out)
}

// LogAdapter returns a new LogAdapter writing to stdout.
func LogAdapter() *cliadapter.LogAdapter {
	return LogAdapterWithOutput(os.Stdout)
}

// LogAdapterWithOutput returns a new LogAdapter writing to the given output.
func LogAdapterWithOutput(out io.Writer) *cliadapter.LogAdapter {
	once.Do(initServices)
	return cliadapter.NewLogAdapter(logService, out)
}
