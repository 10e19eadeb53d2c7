// Package postgres implements core.DocStore on a single JSONB table.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
)

// Schema is the backing DDL. Applied by the admin CLI's migrate command.
const Schema = `
CREATE TABLE IF NOT EXISTS documents (
	collection text        NOT NULL,
	key        text        NOT NULL,
	doc        jsonb       NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now(),
	PRIMARY KEY (collection, key)
);
CREATE INDEX IF NOT EXISTS documents_doc_idx ON documents USING gin (doc);
`

func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", conf.URL)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if err = ping(db); err != nil {
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sqlx.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, Schema)
	return errors.Wrap(err, "applying schema")
}

type Store struct {
	db *sqlx.DB
}

var _ core.DocStore = (*Store)(nil)

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Get(ctx context.Context, collection, key string) (core.Document, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrDocNotFound
		}
		return nil, errors.Wrap(err, "getting document")
	}
	return decodeDoc(raw)
}

func (s *Store) Set(ctx context.Context, collection, key string, doc core.Document, merge bool) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, "marshaling document")
	}

	assign := "doc = excluded.doc"
	if merge {
		// jsonb || merges top-level fields
		assign = "doc = documents.doc || excluded.doc"
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO documents (collection, key, doc) VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO UPDATE SET %s, updated_at = now()`, assign),
		collection, key, raw)
	return errors.Wrap(err, "setting document")
}

func (s *Store) Update(ctx context.Context, collection, key string, updates ...core.FieldUpdate) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var raw []byte
	err = tx.GetContext(ctx, &raw,
		`SELECT doc FROM documents WHERE collection = $1 AND key = $2 FOR UPDATE`, collection, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ErrDocNotFound
		}
		return errors.Wrap(err, "getting document for update")
	}

	doc, err := decodeDoc(raw)
	if err != nil {
		return err
	}
	if err = doc.Apply(updates...); err != nil {
		return err
	}

	if raw, err = json.Marshal(doc); err != nil {
		return errors.Wrap(err, "marshaling document")
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE documents SET doc = $3, updated_at = now() WHERE collection = $1 AND key = $2`,
		collection, key, raw)
	if err != nil {
		return errors.Wrap(err, "updating document")
	}
	return errors.Wrap(tx.Commit(), "committing update")
}

func (s *Store) Query(ctx context.Context, collection string, q core.DocQuery) ([]core.KeyedDocument, error) {
	query := new(strings.Builder)
	query.WriteString(`SELECT key, doc FROM documents WHERE collection = $1`)
	args := []interface{}{collection}

	for _, f := range q.Filters {
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, errors.Wrap(err, "marshaling filter value")
		}
		fmt.Fprintf(query, ` AND doc -> $%d = $%d::jsonb`, len(args)+1, len(args)+2)
		args = append(args, f.Field, string(val))
	}

	if len(q.OrderBy) > 0 {
		query.WriteString(` ORDER BY `)
		for i, ord := range q.OrderBy {
			if i > 0 {
				query.WriteString(`, `)
			}
			dir := "ASC"
			if ord.Desc {
				dir = "DESC"
			}
			// numbers sort numerically, everything else as text
			fmt.Fprintf(query,
				`CASE WHEN jsonb_typeof(doc -> $%d) = 'number' THEN (doc ->> $%d)::numeric END %s NULLS LAST, doc ->> $%d %s`,
				len(args)+1, len(args)+1, dir, len(args)+1, dir)
			args = append(args, ord.Field)
		}
	}

	if q.Limit > 0 {
		fmt.Fprintf(query, ` LIMIT $%d`, len(args)+1)
		args = append(args, q.Limit)
	}

	rows, err := s.db.QueryxContext(ctx, query.String(), args...)
	if err != nil {
		return nil, errors.Wrap(err, "querying documents")
	}
	defer func() { _ = rows.Close() }()

	var out []core.KeyedDocument
	for rows.Next() {
		var (
			key string
			raw []byte
		)
		if err = rows.Scan(&key, &raw); err != nil {
			return nil, errors.Wrap(err, "scanning document")
		}
		doc, err := decodeDoc(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, core.KeyedDocument{Key: key, Doc: doc})
	}
	return out, errors.Wrap(rows.Err(), "iterating documents")
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE collection = $1 AND key = $2`, collection, key)
	return errors.Wrap(err, "deleting document")
}

func decodeDoc(raw []byte) (core.Document, error) {
	var doc core.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrap(err, "unmarshaling document")
	}
	return doc, nil
}
