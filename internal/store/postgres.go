package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"

	"github.com/superagent-ai/superagent/console/pkg/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements ProfileStore on a PostgreSQL "profiles" table.
type PostgresStore struct {
	pool *pgxpool.Pool
	url  string
}

// NewPostgresStore connects to connURL and verifies the connection.
// maxConns <= 0 keeps the pgxpool default.
func NewPostgresStore(ctx context.Context, connURL string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	log.Info().
		Str("host", cfg.ConnConfig.Host).
		Str("database", cfg.ConnConfig.Database).
		Int32("max_conns", cfg.MaxConns).
		Msg("PostgreSQL profile store connected")
	return &PostgresStore{pool: pool, url: connURL}, nil
}

func (s *PostgresStore) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, &ErrNotFound{Entity: "profile", Key: userID}
	}

	var p models.Profile
	var uid uuid.UUID
	err = s.pool.QueryRow(ctx, `
		SELECT user_id, api_key, first_name, last_name, company, is_onboarded, created_at, updated_at
		FROM profiles WHERE user_id = $1`, id).
		Scan(&uid, &p.APIKey, &p.FirstName, &p.LastName, &p.Company, &p.IsOnboarded, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "profile", Key: userID}
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	p.UserID = uid.String()
	return &p, nil
}

func (s *PostgresStore) UpsertProfile(ctx context.Context, p *models.Profile) error {
	id, err := uuid.Parse(p.UserID)
	if err != nil {
		return fmt.Errorf("profile user id %q: %w", p.UserID, err)
	}

	now := time.Now().UTC()
	err = s.pool.QueryRow(ctx, `
		INSERT INTO profiles (user_id, api_key, first_name, last_name, company, is_onboarded, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			api_key      = EXCLUDED.api_key,
			first_name   = EXCLUDED.first_name,
			last_name    = EXCLUDED.last_name,
			company      = EXCLUDED.company,
			is_onboarded = EXCLUDED.is_onboarded,
			updated_at   = EXCLUDED.updated_at
		RETURNING created_at, updated_at`,
		id, p.APIKey, p.FirstName, p.LastName, p.Company, p.IsOnboarded, now).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	log.Info().Msg("PostgreSQL profile store closed")
	return nil
}

// Migrate applies the embedded migrations with golang-migrate. It opens a
// short-lived database/sql handle because the migrate driver requires one.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	db, err := sql.Open("pgx", s.url)
	if err != nil {
		return fmt.Errorf("migrations db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrations ping: %w", err)
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		db.Close()
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		db.Close()
		return fmt.Errorf("migrations init: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations up: %w", err)
	}

	version, dirty, _ := m.Version()
	log.Info().Uint("version", version).Bool("dirty", dirty).Msg("Profile store migrated")
	return nil
}
