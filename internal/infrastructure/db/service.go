package db

import (
	"embed"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/Bedrock-Technology/uniBTC/internal/core/domain"
	"github.com/Bedrock-Technology/uniBTC/internal/core/ports"
	badgerdb "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/badger"
	pgdb "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/postgres"
	sqlitedb "github.com/Bedrock-Technology/uniBTC/internal/infrastructure/db/sqlite"
	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/migration/*
var migrations embed.FS

//go:embed postgres/migration/*
var pgMigrations embed.FS

var (
	eventStoreTypes = map[string]func(...interface{}) (domain.EventRepository, error){
		"badger":   badgerdb.NewEventRepository,
		"postgres": pgdb.NewEventRepository,
	}
	tokenStoreTypes = map[string]func(...interface{}) (domain.TokenRepository, error){
		"badger":   badgerdb.NewTokenRepository,
		"sqlite":   sqlitedb.NewTokenRepository,
		"postgres": pgdb.NewTokenRepository,
	}
	quotaStoreTypes = map[string]func(...interface{}) (domain.QuotaRepository, error){
		"badger":   badgerdb.NewQuotaRepository,
		"sqlite":   sqlitedb.NewQuotaRepository,
		"postgres": pgdb.NewQuotaRepository,
	}
	redeemStoreTypes = map[string]func(...interface{}) (domain.RedeemRepository, error){
		"badger":   badgerdb.NewRedeemRepository,
		"sqlite":   sqlitedb.NewRedeemRepository,
		"postgres": pgdb.NewRedeemRepository,
	}
	debtStoreTypes = map[string]func(...interface{}) (domain.DebtRepository, error){
		"badger":   badgerdb.NewDebtRepository,
		"sqlite":   sqlitedb.NewDebtRepository,
		"postgres": pgdb.NewDebtRepository,
	}
	policyStoreTypes = map[string]func(...interface{}) (domain.PolicyRepository, error){
		"badger":   badgerdb.NewPolicyRepository,
		"sqlite":   sqlitedb.NewPolicyRepository,
		"postgres": pgdb.NewPolicyRepository,
	}
	settingsStoreTypes = map[string]func(...interface{}) (domain.SettingsRepository, error){
		"badger":   badgerdb.NewSettingsRepository,
		"sqlite":   sqlitedb.NewSettingsRepository,
		"postgres": pgdb.NewSettingsRepository,
	}
	feeStoreTypes = map[string]func(...interface{}) (domain.FeeRepository, error){
		"badger":   badgerdb.NewFeeRepository,
		"sqlite":   sqlitedb.NewFeeRepository,
		"postgres": pgdb.NewFeeRepository,
	}
)

const sqliteDbFile = "sqlite.db"

type ServiceConfig struct {
	EventStoreType string
	DataStoreType  string

	EventStoreConfig []interface{}
	DataStoreConfig  []interface{}
}

type service struct {
	eventStore    domain.EventRepository
	tokenStore    domain.TokenRepository
	quotaStore    domain.QuotaRepository
	redeemStore   domain.RedeemRepository
	debtStore     domain.DebtRepository
	policyStore   domain.PolicyRepository
	settingsStore domain.SettingsRepository
	feeStore      domain.FeeRepository
}

func NewService(config ServiceConfig) (ports.RepoManager, error) {
	eventStoreFactory, ok := eventStoreTypes[config.EventStoreType]
	if !ok {
		return nil, fmt.Errorf("event store type not supported")
	}
	if _, ok := tokenStoreTypes[config.DataStoreType]; !ok {
		return nil, fmt.Errorf("invalid data store type: %s", config.DataStoreType)
	}

	var eventStore domain.EventRepository
	var err error

	switch config.EventStoreType {
	case "badger":
		eventStore, err = eventStoreFactory(config.EventStoreConfig...)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
	case "postgres":
		if len(config.EventStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid event store config for postgres")
		}
		dsn, ok := config.EventStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}
		autoCreate, ok := config.EventStoreConfig[1].(bool)
		if !ok {
			return nil, fmt.Errorf("invalid autocreate flag for postgres")
		}
		db, err := pgdb.OpenDb(dsn, autoCreate)
		if err != nil {
			return nil, fmt.Errorf("failed to open postgres db: %s", err)
		}
		eventStore, err = eventStoreFactory(db)
		if err != nil {
			return nil, fmt.Errorf("failed to open event store: %s", err)
		}
	default:
		return nil, fmt.Errorf("unknown event store db type")
	}

	dataStoreConfig := config.DataStoreConfig
	switch config.DataStoreType {
	case "badger":
	case "postgres":
		if len(config.DataStoreConfig) != 2 {
			return nil, fmt.Errorf("invalid data store config for postgres")
		}
		dsn, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid DSN for postgres")
		}
		autoCreate, ok := config.DataStoreConfig[1].(bool)
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
		source, err := iofs.New(pgMigrations, "postgres/migration")
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

		dataStoreConfig = []interface{}{db}
	case "sqlite":
		if len(config.DataStoreConfig) != 1 {
			return nil, fmt.Errorf("invalid data store config")
		}
		baseDir, ok := config.DataStoreConfig[0].(string)
		if !ok {
			return nil, fmt.Errorf("invalid base directory")
		}

		dbFile := filepath.Join(baseDir, sqliteDbFile)
		db, err := sqlitedb.OpenDb(dbFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open db: %s", err)
		}

		driver, err := sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
		if err != nil {
			return nil, fmt.Errorf("failed to init driver: %s", err)
		}
		source, err := iofs.New(migrations, "sqlite/migration")
		if err != nil {
			return nil, fmt.Errorf("failed to embed migrations: %s", err)
		}
		m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
		if err != nil {
			return nil, fmt.Errorf("failed to create migration instance: %s", err)
		}
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return nil, fmt.Errorf("failed to run migrations: %s", err)
		}

		dataStoreConfig = []interface{}{db}
	default:
		return nil, fmt.Errorf("unknown data store db type")
	}

	tokenStore, err := tokenStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open token store: %s", err)
	}
	quotaStore, err := quotaStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open quota store: %s", err)
	}
	redeemStore, err := redeemStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open redeem store: %s", err)
	}
	debtStore, err := debtStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open debt store: %s", err)
	}
	policyStore, err := policyStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open policy store: %s", err)
	}
	settingsStore, err := settingsStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings store: %s", err)
	}
	feeStore, err := feeStoreTypes[config.DataStoreType](dataStoreConfig...)
	if err != nil {
		return nil, fmt.Errorf("failed to open fee store: %s", err)
	}

	return &service{
		eventStore:    eventStore,
		tokenStore:    tokenStore,
		quotaStore:    quotaStore,
		redeemStore:   redeemStore,
		debtStore:     debtStore,
		policyStore:   policyStore,
		settingsStore: settingsStore,
		feeStore:      feeStore,
	}, nil
}

func (s *service) Events() domain.EventRepository {
	return s.eventStore
}

func (s *service) Tokens() domain.TokenRepository {
	return s.tokenStore
}

func (s *service) Quotas() domain.QuotaRepository {
	return s.quotaStore
}

func (s *service) Redeems() domain.RedeemRepository {
	return s.redeemStore
}

func (s *service) Debts() domain.DebtRepository {
	return s.debtStore
}

func (s *service) Policy() domain.PolicyRepository {
	return s.policyStore
}

func (s *service) Settings() domain.SettingsRepository {
	return s.settingsStore
}

func (s *service) Fees() domain.FeeRepository {
	return s.feeStore
}

func (s *service) Close() {
	s.eventStore.Close()
	s.tokenStore.Close()
	s.quotaStore.Close()
	s.redeemStore.Close()
	s.debtStore.Close()
	s.policyStore.Close()
	s.settingsStore.Close()
	s.feeStore.Close()
}
