package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/amishk599/offerhound/internal/model"
)

// PostgresStore records offers in a shared PostgreSQL table, for deployments
// where several hosts aggregate into one history.
type PostgresStore struct {
	pool *pgxpool.Pool
	seen seenSet
	now  func() time.Time
}

// NewPostgresStore connects to dsn and applies schema migrations.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = migratePostgres(db)
	db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}
	return &PostgresStore{pool: pool, seen: newSeenSet(), now: time.Now}, nil
}

func (s *PostgresStore) Load(ctx context.Context) error {
	rows, err := s.pool.Query(ctx, "SELECT job_url FROM offers")
	if err != nil {
		return fmt.Errorf("loading offers: %w", err)
	}
	urls, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return fmt.Errorf("scanning offer urls: %w", err)
	}
	for _, u := range urls {
		s.seen.MarkIfNew(u)
	}
	return nil
}

func (s *PostgresStore) FilterNew(offers []model.Offer) []model.Offer {
	return s.seen.FilterNew(offers)
}

// Persist inserts the offers in one transaction, skipping URLs already present.
func (s *PostgresStore) Persist(ctx context.Context, offers []model.Offer) error {
	offers = stamp(offers, s.now().UTC())
	if len(offers) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	runID := RunID(ctx)
	batch := &pgx.Batch{}
	for _, o := range offers {
		batch.Queue(`INSERT INTO offers
			(job_url, title, company, location, description, source, tags, posted_at, first_seen, run_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (job_url) DO NOTHING`,
			o.JobURL, o.Title, o.Company, o.Location, o.Description, o.Source,
			nonNilTags(o.Tags), o.PostedAt, o.FirstSeen, runID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting offers: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing offers: %w", err)
	}

	for _, o := range offers {
		s.seen.MarkIfNew(o.JobURL)
	}
	return nil
}

func (s *PostgresStore) Recent(ctx context.Context, n int) ([]model.Offer, error) {
	if n <= 0 {
		n = math.MaxInt32
	}
	rows, err := s.pool.Query(ctx, `SELECT job_url, title, company, location, description, source, tags, posted_at, first_seen
		FROM offers ORDER BY first_seen DESC, id DESC LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent offers: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Offer, error) {
		var o model.Offer
		err := row.Scan(&o.JobURL, &o.Title, &o.Company, &o.Location, &o.Description, &o.Source, &o.Tags, &o.PostedAt, &o.FirstSeen)
		if len(o.Tags) == 0 {
			o.Tags = nil
		}
		return o, err
	})
}

func (s *PostgresStore) Len() int { return s.seen.Len() }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
