package sql

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // driver MySQL
	_ "github.com/lib/pq"              // driver PostgreSQL
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Davilys/webmarcas1-sub006/internal/domain"
)

// Store implementação de armazenamento em banco SQL (MySQL 5.7+ e PostgreSQL).
type Store struct {
	db         *sql.DB
	gormDB     *gorm.DB // instância GORM, usada para migração
	driverName string   // "mysql" ou "postgres"

	rlMu         sync.Mutex
	rateLimits   map[string]*rateLimitEntry
	rlLastSweep  time.Time
	rlSweepEvery time.Duration
}

type rateLimitEntry struct {
	Count     int64
	ExpiresAt time.Time
}

// NewStore abre a conexão com o banco e executa as migrações.
func NewStore(
	driverName string,
	dsn string,
	maxOpenConns int,
	maxIdleConns int,
	connMaxLifetime time.Duration,
) (*Store, error) {
	if driverName != "mysql" && driverName != "postgres" {
		return nil, fmt.Errorf("driver de banco não suportado: %s (suportados: mysql, postgres)", driverName)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("falha ao abrir o banco de dados: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao verificar a conexão com o banco: %w", err)
	}

	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var gormDB *gorm.DB
	switch driverName {
	case "mysql":
		gormDB, err = gorm.Open(mysql.New(mysql.Config{Conn: db}), gormConfig)
	case "postgres":
		gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: db}), gormConfig)
	}
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao inicializar o GORM: %w", err)
	}

	store := &Store{
		db:           db,
		gormDB:       gormDB,
		driverName:   driverName,
		rateLimits:   make(map[string]*rateLimitEntry),
		rlSweepEvery: time.Minute,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao migrar o banco de dados: %w", err)
	}

	return store, nil
}

// Close fecha a conexão com o banco.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Health verifica a saúde da conexão.
func (s *Store) Health() error {
	if s.db == nil {
		return fmt.Errorf("conexão com o banco de dados é nula")
	}
	return s.db.Ping()
}

// migrate executa as migrações de esquema (GORM AutoMigrate).
func (s *Store) migrate() error {
	if s.gormDB == nil {
		return nil
	}

	return s.gormDB.AutoMigrate(
		&domain.Contract{},
		&domain.AuditLogEntry{},
		&domain.MailAccount{},
		&domain.User{},
	)
}

// rebind converte os placeholders "?" para "$n" quando o banco é PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.driverName != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
