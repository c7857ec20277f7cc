package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/amishk599/offerhound/internal/model"
)

// SQLiteStore records offers in a SQLite database, one row per URL.
type SQLiteStore struct {
	db   *sql.DB
	seen seenSet
	now  func() time.Time
}

// NewSQLiteStore opens (or creates) the database at dbPath and applies schema migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// One writer keeps INSERT OR IGNORE transactions from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, seen: newSeenSet(), now: time.Now}, nil
}

// Load reads every recorded URL into memory.
func (s *SQLiteStore) Load(ctx context.Context) error {
	rows, err := s.db.QueryContext(ctx, "SELECT job_url FROM offers")
	if err != nil {
		return fmt.Errorf("loading offers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return fmt.Errorf("scanning offer url: %w", err)
		}
		s.seen.MarkIfNew(url)
	}
	return rows.Err()
}

func (s *SQLiteStore) FilterNew(offers []model.Offer) []model.Offer {
	return s.seen.FilterNew(offers)
}

// Persist inserts all offers in one transaction. Existing URLs are left untouched.
func (s *SQLiteStore) Persist(ctx context.Context, offers []model.Offer) error {
	offers = stamp(offers, s.now().UTC())
	if len(offers) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO offers
		(job_url, title, company, location, description, source, tags, posted_at, first_seen, run_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	runID := RunID(ctx)
	for _, o := range offers {
		tags, err := json.Marshal(nonNilTags(o.Tags))
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", o.JobURL, err)
		}
		var posted sql.NullInt64
		if o.PostedAt != nil {
			posted = sql.NullInt64{Int64: o.PostedAt.UnixNano(), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx,
			o.JobURL, o.Title, o.Company, o.Location, o.Description, o.Source,
			string(tags), posted, o.FirstSeen.UnixNano(), runID,
		); err != nil {
			return fmt.Errorf("inserting %s: %w", o.JobURL, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing offers: %w", err)
	}

	for _, o := range offers {
		s.seen.MarkIfNew(o.JobURL)
	}
	return nil
}

func (s *SQLiteStore) Recent(ctx context.Context, n int) ([]model.Offer, error) {
	if n <= 0 {
		n = -1 // no limit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT job_url, title, company, location, description, source, tags, posted_at, first_seen
		FROM offers ORDER BY first_seen DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying recent offers: %w", err)
	}
	defer rows.Close()

	var out []model.Offer
	for rows.Next() {
		var (
			o         model.Offer
			tags      string
			posted    sql.NullInt64
			firstSeen int64
		)
		if err := rows.Scan(&o.JobURL, &o.Title, &o.Company, &o.Location, &o.Description, &o.Source, &tags, &posted, &firstSeen); err != nil {
			return nil, fmt.Errorf("scanning offer: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &o.Tags); err != nil {
			return nil, fmt.Errorf("decoding tags for %s: %w", o.JobURL, err)
		}
		if len(o.Tags) == 0 {
			o.Tags = nil
		}
		if posted.Valid {
			t := time.Unix(0, posted.Int64).UTC()
			o.PostedAt = &t
		}
		o.FirstSeen = time.Unix(0, firstSeen).UTC()
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Len() int { return s.seen.Len() }

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
