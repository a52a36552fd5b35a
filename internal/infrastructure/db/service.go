package db

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
	"github.com/syscoin/sysasset/internal/core/domain"
	"github.com/syscoin/sysasset/internal/core/ports"
	badgerdb "github.com/syscoin/sysasset/internal/infrastructure/db/badger"
	pgdb "github.com/syscoin/sysasset/internal/infrastructure/db/postgres"
	redisdb "github.com/syscoin/sysasset/internal/infrastructure/db/redis"
	sqlitedb "github.com/syscoin/sysasset/internal/infrastructure/db/sqlite"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigration embed.FS

var journalStoreTypes = map[string]func(...interface{}) (domain.JournalRepository, error){
	"badger":   badgerdb.NewJournalRepository,
	"sqlite":   sqlitedb.NewJournalRepository,
	"postgres": pgdb.NewJournalRepository,
	"redis":    redisdb.NewJournalRepository,
}

const (
	sqliteDbFile = "sqlite.db"
)

// ServiceConfig selects the journal store. DbConfig depends on DbType:
//   - badger: base dir (empty for in-memory) and an optional badger.Logger
//   - sqlite: base dir
//   - postgres: dsn and the auto-create flag
//   - redis: url and an optional number of retries
type ServiceConfig struct {
	DbType   string
	DbConfig []interface{}
}

type service struct {
	journalStore domain.JournalRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	journalStoreFactory, ok := journalStoreTypes[config.DbType]
	if !ok {
		return nil, fmt.Errorf("invalid db type: %s", config.DbType)
	}

	var journalStore domain.JournalRepository
	var err error

	switch config.DbType {
	case "badger", "redis":
		journalStore, err = journalStoreFactory(config.DbConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal store: %s", err)
		}
	case "sqlite":
		if len(config.DbConfig) != 1 {
			return nil, fmt.Errorf("invalid db config for sqlite")
		}
		baseDir, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory for sqlite")
		}
		db, err := sqlitedb.OpenDb(filepath.Join(baseDir, sqliteDbFile))
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init sqlite migration driver: %s", err)
		}
		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed sqlite migrations: %s", err)
		}
		m, err := migrate.NewWithInstance("iofs", source, "sysassetdb", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create sqlite migration instance: %s", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run sqlite migrations: %s", err)
		}

		journalStore, err = journalStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal store: %s", err)
		}
	case "postgres":
		if len(config.DbConfig) != 2 {
			return nil, fmt.Errorf("invalid db config for postgres")
		}
		dsn, ok := config.DbConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}
		autoCreate, ok := config.DbConfig[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid autocreate flag for postgres")
		}

		db, err := pgdb.OpenDb(dsn, autoCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}

		pgDriver, err := migratepg.WithInstance(db, &migratepg.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init postgres migration driver: %s", err)
		}
		source, err := iofs.New(pgMigration, "postgres/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed postgres migrations: %s", err)
		}
		m, err := migrate.NewWithInstance("iofs", source, "postgres", pgDriver)
		if err != nil {
			return nil, fmt.Errorf("failed to create postgres migration instance: %s", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run postgres migrations: %s", err)
		}

		journalStore, err = journalStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal store: %s", err)
		}
	}

	log.Debugf("journal store of type %s ready", config.DbType)
	return &service{journalStore}, nil
}

func (s *service) Journal() domain.JournalRepository {
	return s.journalStore
}

func (s *service) Close() {
	s.journalStore.Close()
}
