package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tajirpos/internal/domain"
	"tajirpos/internal/store"
)

// Store persists each collection as a single JSONB document in the
// collections table. A Put is one upsert, so replacing a collection is atomic
// at the row level; there is still no transaction spanning two collections,
// which preserves the documented checkout write gap.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := s.bootstrapUsers(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			name       text PRIMARY KEY,
			payload    jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}

// bootstrapUsers seeds the users collection on first run only. After a Clear
// the collection reads empty until the next restart, matching the rule that
// only products reseed on read.
func (s *Store) bootstrapUsers(ctx context.Context) error {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM collections WHERE name = $1)
	`, store.CollectionUsers).Scan(&exists)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.put(ctx, store.CollectionUsers, store.SeedUsers())
}

func (s *Store) GetProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	err := s.get(ctx, store.CollectionProducts, &products)
	if errors.Is(err, store.ErrNotFound) {
		return store.Seed(), nil
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Store) PutProducts(ctx context.Context, products []domain.Product) error {
	return s.put(ctx, store.CollectionProducts, products)
}

func (s *Store) GetSales(ctx context.Context) ([]domain.Sale, error) {
	sales := []domain.Sale{}
	err := s.get(ctx, store.CollectionSales, &sales)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Sale{}, nil
	}
	if err != nil {
		return nil, err
	}
	return sales, nil
}

func (s *Store) PutSales(ctx context.Context, sales []domain.Sale) error {
	return s.put(ctx, store.CollectionSales, sales)
}

func (s *Store) GetExpenses(ctx context.Context) ([]domain.Expense, error) {
	expenses := []domain.Expense{}
	err := s.get(ctx, store.CollectionExpenses, &expenses)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.Expense{}, nil
	}
	if err != nil {
		return nil, err
	}
	return expenses, nil
}

func (s *Store) PutExpenses(ctx context.Context, expenses []domain.Expense) error {
	return s.put(ctx, store.CollectionExpenses, expenses)
}

func (s *Store) GetUsers(ctx context.Context) ([]domain.UserAccount, error) {
	users := []domain.UserAccount{}
	err := s.get(ctx, store.CollectionUsers, &users)
	if errors.Is(err, store.ErrNotFound) {
		return []domain.UserAccount{}, nil
	}
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) PutUsers(ctx context.Context, users []domain.UserAccount) error {
	return s.put(ctx, store.CollectionUsers, users)
}

func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM collections`)
	return err
}

func (s *Store) get(ctx context.Context, name string, dest any) error {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM collections WHERE name = $1
	`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

func (s *Store) put(ctx context.Context, name string, records any) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (name, payload, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()
	`, name, payload)
	return err
}
