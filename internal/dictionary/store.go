package dictionary

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/nlstn/go-cmisql/internal/observability"
)

// Supported store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type namespaceRecord struct {
	Prefix string `gorm:"primaryKey;size:64"`
	URI    string `gorm:"size:512;not null;index"`
}

func (namespaceRecord) TableName() string { return "cmisql_namespaces" }

type dataTypeRecord struct {
	URI   string `gorm:"primaryKey;size:512"`
	Local string `gorm:"primaryKey;size:255"`
}

func (dataTypeRecord) TableName() string { return "cmisql_data_types" }

type propertyRecord struct {
	URI           string `gorm:"primaryKey;size:512"`
	Local         string `gorm:"primaryKey;size:255"`
	DataTypeURI   string `gorm:"size:512;not null"`
	DataTypeLocal string `gorm:"size:255;not null"`
	Tokenised     string `gorm:"size:8;not null"`
	MultiValued   bool   `gorm:"not null"`
}

func (propertyRecord) TableName() string { return "cmisql_properties" }

// Store persists dictionary definitions with gorm.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
	obs    *observability.Config
	timing bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the store's logger. Nil selects slog.Default().
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) {
		if l == nil {
			l = slog.Default()
		}
		s.logger = l
	}
}

// WithStoreObservability traces store queries when cfg enables detailed
// database tracing.
func WithStoreObservability(cfg *observability.Config) StoreOption {
	return func(s *Store) {
		s.obs = cfg
	}
}

// WithStorePhaseTimings adds every store query to the "db" phase of the
// timing header carried by the calling context.
func WithStorePhaseTimings() StoreOption {
	return func(s *Store) {
		s.timing = true
	}
}

// Dialector returns the gorm dialector for driver.
func Dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite, "":
		return sqlite.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported dictionary store driver %q", driver)
	}
}

// OpenStore opens a database with the named driver and migrates the
// dictionary tables.
func OpenStore(driver, dsn string, opts ...StoreOption) (*Store, error) {
	dialector, err := Dialector(driver, dsn)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open dictionary store: %w", err)
	}
	return NewStore(db, opts...)
}

// NewStore wraps an open database and migrates the dictionary tables.
func NewStore(db *gorm.DB, opts ...StoreOption) (*Store, error) {
	s := &Store{db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if err := observability.RegisterGORMCallbacks(db, s.obs); err != nil {
		return nil, fmt.Errorf("register store tracing: %w", err)
	}
	if s.timing {
		if err := observability.RegisterPhaseTimingCallbacks(db); err != nil {
			return nil, fmt.Errorf("register store timings: %w", err)
		}
	}
	if err := db.AutoMigrate(&namespaceRecord{}, &dataTypeRecord{}, &propertyRecord{}); err != nil {
		return nil, fmt.Errorf("migrate dictionary store: %w", err)
	}
	return s, nil
}

// DB returns the underlying database handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Save upserts every namespace, non built-in data type and property held
// by reg in one transaction.
func (s *Store) Save(ctx context.Context, reg *Registry) error {
	namespaces := reg.Namespaces()
	nsRecords := make([]namespaceRecord, 0, len(namespaces))
	for prefix, uri := range namespaces {
		nsRecords = append(nsRecords, namespaceRecord{Prefix: prefix, URI: uri})
	}

	builtin := make(map[QName]bool, len(BuiltinDataTypes))
	for _, dt := range BuiltinDataTypes {
		builtin[dt] = true
	}
	var dtRecords []dataTypeRecord
	for _, dt := range reg.DataTypes() {
		if !builtin[dt.Name] {
			dtRecords = append(dtRecords, dataTypeRecord{URI: dt.Name.URI, Local: dt.Name.Local})
		}
	}

	props := reg.Properties()
	propRecords := make([]propertyRecord, 0, len(props))
	for _, p := range props {
		propRecords = append(propRecords, propertyRecord{
			URI:           p.Name.URI,
			Local:         p.Name.Local,
			DataTypeURI:   p.DataType.URI,
			DataTypeLocal: p.DataType.Local,
			Tokenised:     p.Tokenised.String(),
			MultiValued:   p.MultiValued,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := clause.OnConflict{UpdateAll: true}
		if len(nsRecords) > 0 {
			if err := tx.Clauses(upsert).Create(&nsRecords).Error; err != nil {
				return err
			}
		}
		if len(dtRecords) > 0 {
			if err := tx.Clauses(upsert).Create(&dtRecords).Error; err != nil {
				return err
			}
		}
		if len(propRecords) > 0 {
			if err := tx.Clauses(upsert).Create(&propRecords).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save dictionary: %w", err)
	}
	s.logger.Debug("dictionary saved",
		"namespaces", len(nsRecords),
		"data_types", len(dtRecords),
		"properties", len(propRecords))
	return nil
}

// Load registers every stored definition into reg. Definitions are staged on
// a copy of reg, so reg is left unchanged when Load fails.
func (s *Store) Load(ctx context.Context, reg *Registry) error {
	db := s.db.WithContext(ctx)
	staged := reg.clone()

	var namespaces []namespaceRecord
	if err := db.Order("prefix").Find(&namespaces).Error; err != nil {
		return fmt.Errorf("load namespaces: %w", err)
	}
	for _, ns := range namespaces {
		if err := staged.RegisterNamespace(ns.Prefix, ns.URI); err != nil {
			return err
		}
	}

	var dataTypes []dataTypeRecord
	if err := db.Order("uri, local").Find(&dataTypes).Error; err != nil {
		return fmt.Errorf("load data types: %w", err)
	}
	for _, dt := range dataTypes {
		if err := staged.RegisterDataType(DataTypeDefinition{Name: NewQName(dt.URI, dt.Local)}); err != nil {
			return err
		}
	}

	var properties []propertyRecord
	if err := db.Order("uri, local").Find(&properties).Error; err != nil {
		return fmt.Errorf("load properties: %w", err)
	}
	for _, p := range properties {
		tokenised, err := ParseTokenisation(p.Tokenised)
		if err != nil {
			return fmt.Errorf("property {%s}%s: %w", p.URI, p.Local, err)
		}
		def := PropertyDefinition{
			Name:        NewQName(p.URI, p.Local),
			DataType:    NewQName(p.DataTypeURI, p.DataTypeLocal),
			Tokenised:   tokenised,
			MultiValued: p.MultiValued,
		}
		if err := staged.RegisterProperty(def); err != nil {
			return err
		}
	}

	reg.adopt(staged)
	s.logger.Debug("dictionary loaded",
		"namespaces", len(namespaces),
		"data_types", len(dataTypes),
		"properties", len(properties))
	return nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
