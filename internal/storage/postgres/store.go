// Package postgres provides a Postgres-backed product store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/catalog-scraper/internal/catalog"
)

// DefaultTable holds the latest scrape result when no table is configured.
const DefaultTable = "scraped_products"

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

var copyColumns = []string{"position", "title", "price", "image_url"}

// Config controls the Postgres connection pool used for product rows.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// Store keeps the latest product list in one table, one row per product,
// ordered by position. Save replaces the whole table inside a transaction.
type Store struct {
	pool     pool
	table    string
	location string
}

// New connects to Postgres using cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("storage.postgres_dsn is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	p, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	conn := poolCfg.ConnConfig
	return &Store{
		pool:     p,
		table:    table,
		location: fmt.Sprintf("postgres://%s:%d/%s?table=%s", conn.Host, conn.Port, conn.Database, table),
	}, nil
}

// NewWithPool constructs a store from an existing pool (primarily for testing).
func NewWithPool(p pool, table string) (*Store, error) {
	if p == nil {
		return nil, fmt.Errorf("pool is required")
	}
	table, err := tableName(table)
	if err != nil {
		return nil, err
	}
	return &Store{pool: p, table: table, location: "postgres:" + table}, nil
}

func tableName(table string) (string, error) {
	if table == "" {
		table = DefaultTable
	}
	if !validTableName.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Location identifies the table holding the document.
func (s *Store) Location() string {
	return s.location
}

// EnsureSchema creates the product table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	position  integer PRIMARY KEY,
	title     text NOT NULL,
	price     double precision NOT NULL,
	image_url text NOT NULL
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}
	return nil
}

// Save replaces every stored row with products.
func (s *Store) Save(ctx context.Context, products []catalog.Product) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				err = fmt.Errorf("%w (rollback: %v)", err, rbErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", s.table)); err != nil {
		return fmt.Errorf("clear products: %w", err)
	}
	if len(products) > 0 {
		rows := make([][]any, 0, len(products))
		for i, p := range products {
			rows = append(rows, []any{i, p.Title, p.Price, p.ImageURL})
		}
		if _, err = tx.CopyFrom(ctx, pgx.Identifier{s.table}, copyColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy products: %w", err)
		}
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit products: %w", err)
	}
	return nil
}

// Load returns the stored products in their saved order.
func (s *Store) Load(ctx context.Context) ([]catalog.Product, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT title, price, image_url FROM %s ORDER BY position", s.table))
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	products, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (catalog.Product, error) {
		var p catalog.Product
		err := row.Scan(&p.Title, &p.Price, &p.ImageURL)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	if products == nil {
		products = []catalog.Product{}
	}
	return products, nil
}
