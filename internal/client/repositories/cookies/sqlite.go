package cookies

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/valetkey/internal/dbx"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Load(ctx context.Context) ([]Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT host, domain, name, value, path, expires, secure, http_only
		FROM session_cookies
		ORDER BY host, name, domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to load cookies: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0)
	for rows.Next() {
		var (
			rec     Record
			expires sql.NullInt64
		)
		if err := rows.Scan(&rec.Host, &rec.Domain, &rec.Name, &rec.Value, &rec.Path, &expires, &rec.Secure, &rec.HTTPOnly); err != nil {
			return nil, fmt.Errorf("failed to scan cookie row: %w", err)
		}
		if expires.Valid {
			rec.Expires = time.Unix(expires.Int64, 0)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cookie rows: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, host string, recs []Record) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_cookies WHERE host = ?`, host); err != nil {
			return err
		}
		for _, rec := range recs {
			var expires sql.NullInt64
			if !rec.Expires.IsZero() {
				expires = sql.NullInt64{Int64: rec.Expires.Unix(), Valid: true}
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO session_cookies (host, domain, name, value, path, expires, secure, http_only)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(host, domain, name, path) DO UPDATE SET
					value = excluded.value,
					expires = excluded.expires,
					secure = excluded.secure,
					http_only = excluded.http_only
			`, host, rec.Domain, rec.Name, rec.Value, rec.Path, expires, rec.Secure, rec.HTTPOnly); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save cookies[%s]: %w", host, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM session_cookies`); err != nil {
		return fmt.Errorf("failed to clear cookies: %w", err)
	}
	return nil
}
