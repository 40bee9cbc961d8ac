package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Vovarama1992/erp-sales-bot/internal/config"
	"github.com/Vovarama1992/erp-sales-bot/internal/orders"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("exit")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	serve := newServeCmd()

	root := &cobra.Command{
		Use:           "erp-sales-bot",
		Short:         "Chat-style questions over synced ERP sales orders",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.AddCommand(serve, newSyncCmd())
	return root
}

// app holds what both commands need: config, database and the synchronizer.
type app struct {
	cfg   config.Config
	db    *sql.DB
	store *orders.Store
	sync  *orders.Synchronizer
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	// --- DB ---
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	repo := orders.NewRepo(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	// --- Orders module wiring ---
	erp := orders.NewERPOutbound(orders.ERPOptions{
		URL:        cfg.ERP.URL,
		Token:      cfg.ERP.Token,
		Subsidiary: cfg.ERP.Subsidiary,
		Location:   cfg.ERP.Location,
		Employee:   cfg.ERP.Employee,
		RatePerSec: cfg.ERP.RatePerSec,
		Timeout:    cfg.ERP.Timeout,
	})
	store := orders.NewStore()
	synchronizer := orders.NewSynchronizer(erp, repo, store,
		orders.WithPageSize(cfg.ERP.PageSize),
		orders.WithStartYear(cfg.ERP.StartYear),
	)

	return &app{cfg: cfg, db: db, store: store, sync: synchronizer}, nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		log.Warn().Err(err).Msg("db close")
	}
}
