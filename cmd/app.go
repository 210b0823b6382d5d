package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"gorm.io/gorm"

	"github.com/frahmantamala/personal-ledger/internal"
	"github.com/frahmantamala/personal-ledger/internal/category"
	"github.com/frahmantamala/personal-ledger/internal/core/events"
	"github.com/frahmantamala/personal-ledger/internal/core/events/broker"
	"github.com/frahmantamala/personal-ledger/internal/importer"
	"github.com/frahmantamala/personal-ledger/internal/report"
	"github.com/frahmantamala/personal-ledger/internal/storage"
	"github.com/frahmantamala/personal-ledger/internal/transaction"
	"github.com/frahmantamala/personal-ledger/pkg/logger"
)

// Dependencies holds everything the commands share once the database is up.
type Dependencies struct {
	Config       *internal.Config
	DB           *gorm.DB
	ReportDB     *sqlx.DB
	EventBus     *events.EventBus
	Forwarder    *broker.Forwarder
	Categories   *category.Service
	Transactions *transaction.Service
	Pipeline     *importer.Pipeline
	Reports      *report.Service
	Logger       *slog.Logger
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	lg := logger.LoggerWrapper()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		_ = storage.Close(db)
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	reportDB := sqlx.NewDb(sqlDB, sqlxDriverName(cfg.Database.Driver))

	bus := events.NewEventBus(lg)
	bus.Subscribe(events.AllEvents, func(ctx context.Context, event events.Event) error {
		logger.From(ctx).Info("ledger event",
			"event_type", event.EventType(),
			"event_id", event.EventID(),
			"payload", event.Payload())
		return nil
	})

	var forwarder *broker.Forwarder
	if cfg.Events.AMQPURL != "" {
		forwarder, err = broker.NewForwarder(cfg.Events.AMQPURL, cfg.Events.Exchange, lg)
		if err != nil {
			_ = storage.Close(db)
			return nil, fmt.Errorf("failed to connect event broker: %w", err)
		}
		forwarder.Attach(bus)
		lg.Info("forwarding events to AMQP", "exchange", cfg.Events.Exchange)
	}

	uow := storage.NewUnitOfWork(db)
	repos := storage.Repositories(db)

	return &Dependencies{
		Config:       cfg,
		DB:           db,
		ReportDB:     reportDB,
		EventBus:     bus,
		Forwarder:    forwarder,
		Categories:   category.NewService(repos.Categories, lg),
		Transactions: transaction.NewService(uow, bus, lg),
		Pipeline:     importer.NewPipeline(uow, bus, lg),
		Reports:      report.NewService(report.NewRepository(reportDB), lg),
		Logger:       lg,
	}, nil
}

// Close waits for in-flight event handlers, then releases connections.
func (d *Dependencies) Close(ctx context.Context) {
	if err := d.EventBus.Drain(ctx); err != nil {
		d.Logger.Warn("event handlers still running at shutdown", "error", err)
	}
	if d.Forwarder != nil {
		if err := d.Forwarder.Close(); err != nil {
			d.Logger.Error("event broker close error", "error", err)
		}
	}
	if err := storage.Close(d.DB); err != nil {
		d.Logger.Error("database close error", "error", err)
	}
}

func sqlxDriverName(driver string) string {
	if driver == internal.DriverSQLite {
		return "sqlite3"
	}
	return "pgx"
}
