package db

import (
	"net/url"
	"strings"

	"github.com/habiliai/edudash/config"
	"github.com/habiliai/edudash/internal/mylog"
	"github.com/jcooky/go-din"
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Key = din.NewRandomName()
)

const sqlitePrefix = "sqlite:"

// OpenDB opens postgres for postgres:// urls and sqlite for sqlite:<dsn>.
func OpenDB(databaseUrl string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if dsn, ok := strings.CutPrefix(databaseUrl, sqlitePrefix); ok {
		dialector = sqlite.Open(dsn)
	} else {
		dsn, err := withSearchPath(databaseUrl)
		if err != nil {
			return nil, err
		}
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if db.Dialector.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrapf(err, "failed to get db")
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

// withSearchPath pins postgres connections to the edudash schema unless the
// url already chooses one.
func withSearchPath(databaseUrl string) (string, error) {
	u, err := url.Parse(databaseUrl)
	if err != nil {
		return "", errors.Wrapf(err, "invalid database url")
	}
	q := u.Query()
	if q.Get("search_path") == "" {
		q.Set("search_path", schema)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrapf(err, "failed to get db")
	}
	if err := sqlDB.Close(); err != nil {
		return errors.Wrapf(err, "failed to close db")
	}

	return nil
}

func init() {
	din.Register(Key, func(c *din.Container) (any, error) {
		logger, err := din.Get[*mylog.Logger](c, mylog.Key)
		if err != nil {
			return nil, err
		}

		cfg, err := din.GetT[*config.ServerConfig](c)
		if err != nil {
			return nil, err
		}

		logger.Info("initialize database")
		db, err := OpenDB(cfg.DatabaseUrl)
		if err != nil {
			return nil, err
		}

		if cfg.DatabaseAutoMigrate || c.Env == din.EnvTest {
			if err := AutoMigrate(c, db); err != nil {
				return nil, errors.Wrapf(err, "failed to migrate database")
			}
		}

		go func() {
			<-c.Done()
			if err := CloseDB(db); err != nil {
				logger.Warn("failed to close database", "err", err)
			}
			logger.Info("database closed")
		}()

		return db, nil
	})
}
