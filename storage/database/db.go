package database

import (
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/grammarlab/grammarlab/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Open connects to the backend database. It fails (rather than at startup)
// when the backend endpoint URL or project identifier is missing.
func Open(conf *core.Config) (*sqlx.DB, error) {
	if err := conf.CheckBackend(); err != nil {
		return nil, errors.Wrap(err, "checking backend config")
	}

	u, err := url.Parse(conf.Database.URL)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing backend URL %q", conf.Database.URL)
	}
	u.Path = "/" + conf.Database.Project

	db, err := sqlx.Open("postgres", u.String())
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func Migrate(db *sqlx.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

// RunGoose runs an arbitrary goose command against the embedded migrations.
func RunGoose(command string, db *sqlx.DB, args ...string) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	return goose.Run(command, db.DB, "migrations", args...)
}
