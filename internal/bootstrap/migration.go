package bootstrap

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/servana/eventrelay/internal/config"
)

const defaultMigrationsDir = "migrations"

func Migrate(ctx context.Context, cfg config.Config, cmd string, version int64, dir string) error {
	if cfg.Database.WriteDSN == "" {
		return errors.New("db: WriteDSN is required")
	}
	if dir == "" {
		dir = defaultMigrationsDir
	}

	pgxCfg, err := pgx.ParseConfig(cfg.Database.WriteDSN)
	if err != nil {
		return err
	}
	pgxCfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	db := stdlib.OpenDB(*pgxCfg)
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	actions := map[string]func() error{
		"up":      func() error { return goose.Up(db, dir) },
		"down":    func() error { return goose.Down(db, dir) },
		"status":  func() error { return goose.Status(db, dir) },
		"version": func() error { return goose.Version(db, dir) },
		"redo":    func() error { return goose.Redo(db, dir) },
		"reset":   func() error { return goose.Reset(db, dir) },
		"up-to":   func() error { return goose.UpTo(db, dir, version) },
		"down-to": func() error { return goose.DownTo(db, dir, version) },
	}
	action, ok := actions[cmd]
	if !ok {
		return errors.New("unknown migrate command")
	}
	return action()
}
