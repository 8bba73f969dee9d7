package gormdb

import (
	"context"
	"errors"

	"github.com/glebarez/sqlite"
	"github.com/m-mizutani/goerr/v2"
	"github.com/trm-lab/argus/pkg/domain/interfaces"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a requested entity does not exist.
// Raw gorm errors never escape this package.
var ErrNotFound = interfaces.ErrNotFound

// ErrConflict is returned when a storage constraint is violated
var ErrConflict = errors.New("conflict")

// DB is the relational repository backend built on gorm. SQLite is the
// default engine; the single-writer model of SQLite gives transactions
// the serialization the approval engine requires.
type DB struct {
	db         *gorm.DB
	vendor     *vendorRepository
	workflow   *workflowRepository
	issue      *issueRepository
	monitoring *monitoringRepository
	appetite   *appetiteRepository
	audit      *auditRepository
}

var _ interfaces.Repository = &DB{}

// Open opens (or creates) the SQLite database at path and returns the
// repository backend. Use ":memory:" for an ephemeral database.
func Open(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	return New(db), nil
}

// New assembles the backend around an existing gorm handle
func New(db *gorm.DB) *DB {
	return &DB{
		db:         db,
		vendor:     &vendorRepository{db: db},
		workflow:   &workflowRepository{db: db},
		issue:      &issueRepository{db: db},
		monitoring: &monitoringRepository{db: db},
		appetite:   &appetiteRepository{db: db},
		audit:      &auditRepository{db: db},
	}
}

// Migrate creates or updates the schema for all records
func (d *DB) Migrate(ctx context.Context) error {
	err := d.db.WithContext(ctx).AutoMigrate(
		&vendorRecord{},
		&workflowRecord{},
		&stepRecord{},
		&issueRecord{},
		&signalRecord{},
		&appetiteRecord{},
		&breachRecord{},
		&auditRecord{},
	)
	if err != nil {
		return goerr.Wrap(err, "failed to migrate schema")
	}
	return nil
}

func (d *DB) Vendor() interfaces.VendorRepository {
	return d.vendor
}

func (d *DB) Workflow() interfaces.WorkflowRepository {
	return d.workflow
}

func (d *DB) Issue() interfaces.IssueRepository {
	return d.issue
}

func (d *DB) Monitoring() interfaces.MonitoringRepository {
	return d.monitoring
}

func (d *DB) Appetite() interfaces.AppetiteRepository {
	return d.appetite
}

func (d *DB) Audit() interfaces.AuditRepository {
	return d.audit
}

// InTx runs fn inside one database transaction. The transaction handle
// travels in the context; repository calls made with that context join
// the transaction. Returning an error rolls everything back.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return goerr.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

type txKey struct{}

func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// conn returns the transaction handle from the context when present,
// otherwise the root handle.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// normalize maps gorm errors to the package sentinels so callers never
// see raw driver errors.
func normalize(err error, msg string, values ...goerr.Option) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		opts := append([]goerr.Option{}, values...)
		return goerr.Wrap(ErrNotFound, msg, opts...)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		opts := append([]goerr.Option{}, values...)
		return goerr.Wrap(ErrConflict, msg, opts...)
	default:
		opts := append([]goerr.Option{}, values...)
		return goerr.Wrap(err, msg, opts...)
	}
}
