package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gffdb/feature"
)

// Feature looks up one feature by its primary key.
func (d *DB) Feature(ctx context.Context, id string) (*feature.Feature, error) {
	row := d.conn.QueryRowContext(ctx, `
		SELECT id, seqid, source, featuretype, start, end, score, strand, frame, attributes, extra
		FROM features WHERE id = ?`, id)
	return scanFeature(row)
}

// Children returns the features related to parent at exactly level
// hops, in features-table insertion order (rowid), optionally filtered by
// featuretype (pass "" for no filter).
func (d *DB) Children(ctx context.Context, parent string, level int, featuretype string) ([]*feature.Feature, error) {
	query := `
		SELECT f.id, f.seqid, f.source, f.featuretype, f.start, f.end, f.score, f.strand, f.frame, f.attributes, f.extra
		FROM relations r
		JOIN features f ON f.id = r.child
		WHERE r.parent = ? AND r.level = ?`
	args := []interface{}{parent, level}
	if featuretype != "" {
		query += ` AND f.featuretype = ?`
		args = append(args, featuretype)
	}
	query += ` ORDER BY f.rowid`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: querying children of %s: %w", parent, err)
	}
	defer rows.Close()
	return scanFeatures(rows)
}

// Region returns every feature on seqid overlapping [start, end]. When
// completelyWithin is true, only features fully contained in
// [start, end] are returned (spec.md §8 S1's region-query scenario).
func (d *DB) Region(ctx context.Context, seqid string, start, end int64, completelyWithin bool) ([]*feature.Feature, error) {
	query := `
		SELECT id, seqid, source, featuretype, start, end, score, strand, frame, attributes, extra
		FROM features
		WHERE seqid = ? AND start IS NOT NULL AND end IS NOT NULL`
	if completelyWithin {
		query += ` AND start >= ? AND end <= ?`
	} else {
		query += ` AND start <= ? AND end >= ?`
	}
	args := []interface{}{seqid}
	if completelyWithin {
		args = append(args, start, end)
	} else {
		args = append(args, end, start)
	}
	query += ` ORDER BY start`

	rows, err := d.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: querying region %s:%d-%d: %w", seqid, start, end, err)
	}
	defer rows.Close()
	return scanFeatures(rows)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanFeature(row scanner) (*feature.Feature, error) {
	var (
		id, seqid, source, featuretype string
		start, end                     sql.NullInt64
		score, strand, frame           string
		attrsJSON, extraJSON           string
	)
	err := row.Scan(&id, &seqid, &source, &featuretype, &start, &end, &score, &strand, &frame, &attrsJSON, &extraJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: scanning feature row: %w", err)
	}

	f := feature.New()
	f.ID = id
	f.Seqid = seqid
	f.Source = source
	f.Featuretype = featuretype
	if start.Valid {
		v := start.Int64
		f.Start = &v
	}
	if end.Valid {
		v := end.Int64
		f.End = &v
	}
	f.Score = score
	f.Strand = strand
	f.Frame = frame

	var attrMap map[string][]string
	if err := json.Unmarshal([]byte(attrsJSON), &attrMap); err != nil {
		return nil, fmt.Errorf("store: unmarshaling attributes for %s: %w", id, err)
	}
	for k, v := range attrMap {
		f.Attributes.Set(k, v)
	}

	var extra []string
	if err := json.Unmarshal([]byte(extraJSON), &extra); err != nil {
		return nil, fmt.Errorf("store: unmarshaling extra for %s: %w", id, err)
	}
	f.Extra = extra

	return f, nil
}

func scanFeatures(rows *sql.Rows) ([]*feature.Feature, error) {
	var out []*feature.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: iterating rows: %w", err)
	}
	return out, nil
}
