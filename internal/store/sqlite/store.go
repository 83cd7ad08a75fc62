// Package sqlite provides a record store backed by a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/hay-kot/parley/internal/core/record"
)

// Store implements record.Database on SQLite.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ record.Database = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite has a single writer; one connection also keeps pragmas in effect.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &Store{db: db, path: path, now: time.Now}, nil
}

// WithClock sets the clock used for creation dates.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save creates or replaces a record, keeping the creation date of an existing
// one.
func (s *Store) Save(ctx context.Context, r record.Record) (record.Record, error) {
	if r.Name == "" {
		r.Name = uuid.NewString()
	}

	fields, err := json.Marshal(fieldsOrEmpty(r.Fields))
	if err != nil {
		return record.Record{}, fmt.Errorf("marshal fields: %w", err)
	}

	err = s.inTx(ctx, func(tx *sql.Tx) error {
		var nanos int64
		err := tx.QueryRowContext(ctx, `SELECT creation_date FROM records WHERE name = ?`, r.Name).Scan(&nanos)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			nanos = s.now().UnixNano()
		case err != nil:
			return fmt.Errorf("read creation date: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO records (name, type, fields, creation_date) VALUES (?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET type = excluded.type, fields = excluded.fields`,
			r.Name, r.Type, string(fields), nanos)
		if err != nil {
			return fmt.Errorf("upsert record: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM record_refs WHERE record_name = ?`, r.Name); err != nil {
			return fmt.Errorf("clear references: %w", err)
		}
		for field, ref := range r.References {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO record_refs (record_name, field, target, action) VALUES (?, ?, ?, ?)`,
				r.Name, field, ref.RecordName, int(ref.Action))
			if err != nil {
				return fmt.Errorf("insert reference %q: %w", field, err)
			}
		}

		at := time.Unix(0, nanos).UTC()
		r.CreationDate = &at
		return nil
	})
	if err != nil {
		return record.Record{}, err
	}

	return r, nil
}

// Fetch returns a record by type and name. Returns ErrNotFound if not found.
func (s *Store) Fetch(ctx context.Context, typ, name string) (record.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT name, type, fields, creation_date FROM records WHERE name = ? AND type = ?`, name, typ)

	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return record.Record{}, record.ErrNotFound
	}
	if err != nil {
		return record.Record{}, err
	}

	if err := s.loadRefs(ctx, []*record.Record{&r}); err != nil {
		return record.Record{}, err
	}
	return r, nil
}

// Delete removes a record and every record cascading from it. Returns
// ErrNotFound if not found.
func (s *Store) Delete(ctx context.Context, name string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, cascadeDelete, name, int(record.ActionDeleteSelf))
		if err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		if n == 0 {
			return record.ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, pruneRefs); err != nil {
			return fmt.Errorf("prune references: %w", err)
		}
		return nil
	})
}

// Query returns the records matching q. Filtering, sorting and limiting run
// in SQL with the same rules as record.Query.Apply.
func (s *Store) Query(ctx context.Context, q record.Query) ([]record.Record, error) {
	var (
		where = []string{"r.type = ?"}
		args  = []any{q.Type}
	)

	if q.Field != "" {
		where = append(where, `(
			EXISTS (SELECT 1 FROM record_refs rr WHERE rr.record_name = r.name AND rr.field = ? AND rr.target = ?)
			OR (
				NOT EXISTS (SELECT 1 FROM record_refs rr WHERE rr.record_name = r.name AND rr.field = ?)
				AND json_extract(r.fields, ?) = ?
			)
		)`)
		args = append(args, q.Field, q.Equals, q.Field, jsonPath(q.Field), q.Equals)
	}

	dir := "DESC"
	if q.Sort.Ascending {
		dir = "ASC"
	}

	var order string
	switch q.Sort.Key {
	case "", record.SortCreationDate:
		order = fmt.Sprintf("r.creation_date %s, r.name %s", dir, dir)
	default:
		order = fmt.Sprintf("COALESCE(json_extract(r.fields, ?), '') %s, r.name %s", dir, dir)
		args = append(args, jsonPath(q.Sort.Key))
	}

	query := fmt.Sprintf(
		`SELECT r.name, r.type, r.fields, r.creation_date FROM records r WHERE %s ORDER BY %s`,
		strings.Join(where, " AND "), order)
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	var out []record.Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			_ = rows.Close()
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("query records: %w", err)
	}
	// Close before loading references; the pool holds a single connection.
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	ptrs := make([]*record.Record, len(out))
	for i := range out {
		ptrs[i] = &out[i]
	}
	if err := s.loadRefs(ctx, ptrs); err != nil {
		return nil, err
	}

	return out, nil
}

func (s *Store) loadRefs(ctx context.Context, records []*record.Record) error {
	for _, r := range records {
		rows, err := s.db.QueryContext(ctx,
			`SELECT field, target, action FROM record_refs WHERE record_name = ?`, r.Name)
		if err != nil {
			return fmt.Errorf("load references: %w", err)
		}

		for rows.Next() {
			var (
				field, target string
				action        int
			)
			if err := rows.Scan(&field, &target, &action); err != nil {
				_ = rows.Close()
				return fmt.Errorf("scan reference: %w", err)
			}
			r.References[field] = record.Reference{RecordName: target, Action: record.Action(action)}
		}
		err = rows.Err()
		_ = rows.Close()
		if err != nil {
			return fmt.Errorf("load references: %w", err)
		}
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (record.Record, error) {
	var (
		name, typ, fields string
		nanos             int64
	)
	if err := sc.Scan(&name, &typ, &fields, &nanos); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return record.Record{}, err
		}
		return record.Record{}, fmt.Errorf("scan record: %w", err)
	}

	r := record.New(typ, name)
	if err := json.Unmarshal([]byte(fields), &r.Fields); err != nil {
		return record.Record{}, fmt.Errorf("parse fields of %q: %w", name, err)
	}
	at := time.Unix(0, nanos).UTC()
	r.CreationDate = &at
	return r, nil
}

// jsonPath quotes key as a json_extract path.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

func fieldsOrEmpty(fields map[string]string) map[string]string {
	if fields == nil {
		return map[string]string{}
	}
	return fields
}
