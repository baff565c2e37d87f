package cmd

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/stemcapstone/smartgoals/internal/config"
	"github.com/stemcapstone/smartgoals/internal/db"
	"github.com/stemcapstone/smartgoals/internal/logger"
)

// open loads the configuration and connects to the database without
// migrating it.
func open() (*config.Config, *sqlx.DB, error) {
	cfg := config.Load()
	logger.Init(cfg.IsDevelopment(), "")

	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return cfg, database, nil
}
