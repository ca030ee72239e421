package revocation

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/brightclass/authcore/internal/dbx"
	"github.com/brightclass/authcore/internal/revocation/migrations"
)

// PostgresStore keeps revocations in the platform database. Rows carry an
// expires_at deadline; reads filter lapsed rows, and PurgeExpired deletes
// them so the tables stay bounded without relying on reader traffic.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens the database and runs the embedded migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	s := &PostgresStore{db: db}
	if err := s.runMigrations(ctx); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return s, nil
}

// NewPostgresStoreWithDB wraps an existing handle without running
// migrations. Used by tests.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, s.db, ".")
}

func (s *PostgresStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM revoked_tokens
			WHERE jti = $1 AND expires_at > now()
		)
	`
	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, jti).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (s *PostgresStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	query := `
		INSERT INTO revoked_tokens (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, jti, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsFamilyRevoked(ctx context.Context, family string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM revoked_families
			WHERE family = $1 AND expires_at > now()
		)
	`
	var revoked bool
	if err := s.db.QueryRowContext(ctx, query, family).Scan(&revoked); err != nil {
		return false, fmt.Errorf("db error: %w", err)
	}
	return revoked, nil
}

func (s *PostgresStore) RevokeFamily(ctx context.Context, family string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	query := `
		INSERT INTO revoked_families (family, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (family) DO UPDATE SET expires_at = EXCLUDED.expires_at
	`
	if _, err := s.db.ExecContext(ctx, query, family, time.Now().Add(ttl)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PurgeExpired removes lapsed rows from both tables in one transaction.
// The app runs this on a timer when the Postgres backend is selected.
func (s *PostgresStore) PurgeExpired(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at <= now()`); err != nil {
			return fmt.Errorf("purging revoked tokens: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM revoked_families WHERE expires_at <= now()`); err != nil {
			return fmt.Errorf("purging revoked families: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
