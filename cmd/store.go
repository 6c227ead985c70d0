package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-ranker/internal/secrets"
	"github.com/spigell/resume-ranker/internal/store"
)

// openStore resolves the DSN, connects and applies pending migrations.
func openStore(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*store.Store, error) {
	if cfg == nil {
		cfg = &DatabaseConfig{Driver: store.DriverSQLite}
	}
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))

	dsn, err := secrets.Load(secrets.Source{
		Name:     "database dsn",
		Value:    cfg.DSN,
		File:     cfg.DSNFile,
		Optional: driver == "" || driver == store.DriverSQLite,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set database.dsn, database.dsn-file or %s_DATABASE_DSN)", err, envPrefix)
	}

	s, err := store.Open(ctx, store.Config{Driver: driver, DSN: dsn}, logger)
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}
