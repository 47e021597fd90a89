package export

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/glint-tools/carbon/internal/project"
	"github.com/glint-tools/carbon/internal/sqlutil"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS objects (
	id TEXT PRIMARY KEY,
	collection_id TEXT NOT NULL,
	collection TEXT NOT NULL,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	parent_id TEXT,
	is_type INTEGER NOT NULL,
	position INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_objects_collection ON objects(collection_id);

CREATE TABLE IF NOT EXISTS field_values (
	object_id TEXT NOT NULL,
	field_id TEXT NOT NULL,
	key TEXT NOT NULL,
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	value TEXT NOT NULL,
	overridden INTEGER NOT NULL,
	position INTEGER NOT NULL,
	PRIMARY KEY (object_id, field_id)
);
`

// ValueRow is one resolved field value as stored in the SQLite export.
type ValueRow struct {
	Collection string
	Path       string
	Key        string
	Type       string
	Value      string
	Overridden bool
}

// WriteSQLite stores every object of p, with its resolved field values, in the
// database at path.
//
// The database is updated in place: rows of collections that are no longer in
// the project are deleted and each exported collection is replaced in one
// transaction.
func WriteSQLite(ctx context.Context, p *project.Project, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	ids := make([]uuid.UUID, 0, p.Len())
	for _, c := range p.Collections() {
		ids = append(ids, c.ID())
	}
	if err := deleteStale(ctx, tx, ids); err != nil {
		return err
	}
	for _, c := range p.Collections() {
		if err := writeCollection(ctx, tx, c); err != nil {
			return fmt.Errorf("failed to export %s: %w", c.Name(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit export: %w", err)
	}
	return nil
}

func deleteStale(ctx context.Context, tx *sql.Tx, keep []uuid.UUID) error {
	where := "1 = 1"
	var args []any
	if len(keep) > 0 {
		var ph string
		ph, args = sqlutil.InClauseArgs(keep)
		where = "collection_id NOT IN (" + ph + ")"
	}

	stmts := []string{
		"DELETE FROM field_values WHERE object_id IN (SELECT id FROM objects WHERE " + where + ")",
		"DELETE FROM objects WHERE " + where,
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to delete stale rows: %w", err)
		}
	}
	return nil
}

func writeCollection(ctx context.Context, tx *sql.Tx, c *project.Collection) error {
	cid := c.ID().String()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM field_values WHERE object_id IN (SELECT id FROM objects WHERE collection_id = ?)", cid); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM objects WHERE collection_id = ?", cid); err != nil {
		return err
	}

	objStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO objects
		(id, collection_id, collection, name, path, parent_id, is_type, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer objStmt.Close()

	valStmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO field_values
		(object_id, field_id, key, name, type, value, overridden, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer valStmt.Close()

	for i, obj := range c.Objects() {
		var parent any
		if obj.HasParent() {
			parent = obj.ParentID().String()
		}
		if _, err := objStmt.ExecContext(ctx, obj.ID().String(), cid, c.Name().String(),
			objectPath(c, obj), parent, sqlutil.Bool(obj.IsType()), i); err != nil {
			return err
		}

		for j, r := range c.EffectiveFields(obj) {
			if _, err := valStmt.ExecContext(ctx, obj.ID().String(), r.Origin.ID().String(),
				r.Key, r.Origin.Name().String(), r.Field.Type().String(),
				r.Field.EncodeData(), sqlutil.Bool(r.Overridden()), j); err != nil {
				return err
			}
		}
	}
	return nil
}

func objectPath(c *project.Collection, obj *project.Object) string {
	if obj == c.Root() {
		return ""
	}
	parts := []string{obj.Name().String()}
	for _, a := range c.Ancestors(obj) {
		if a == c.Root() {
			break
		}
		parts = append(parts, a.Name().String())
	}
	slices.Reverse(parts)
	return strings.Join(parts, "/")
}

// ReadSQLite returns the resolved values stored in the database at path,
// ordered by collection, object and field position.
func ReadSQLite(ctx context.Context, path string) ([]ValueRow, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT o.collection, o.path, v.key, v.type, v.value, v.overridden
		FROM field_values v
		JOIN objects o ON o.id = v.object_id
		ORDER BY o.collection, o.position, v.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query values: %w", err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (ValueRow, error) {
		var r ValueRow
		var overridden int
		err := rows.Scan(&r.Collection, &r.Path, &r.Key, &r.Type, &r.Value, &overridden)
		r.Overridden = overridden != 0
		return r, err
	})
}
