// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package persistence implements the broker's optional snapshot-to-SQLite
// durability path. Nothing here sits on the request path; cmd/bisectd runs
// Load at startup and Save from its background goroutine and at shutdown.
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"bisectbroker/internal/job"
)

const schema = `
CREATE TABLE IF NOT EXISTS jobs (
	id      TEXT PRIMARY KEY,
	version INTEGER NOT NULL,
	record  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS logs (
	id  TEXT PRIMARY KEY,
	log TEXT NOT NULL
);
`

func open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate snapshot db: %w", err)
	}
	return db, nil
}

// Save replaces the snapshot file's contents with every job currently held
// by store, in a single transaction.
func Save(ctx context.Context, store *job.Store, path string) error {
	db, err := open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM jobs"); err != nil {
		return fmt.Errorf("clear jobs table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM logs"); err != nil {
		return fmt.Errorf("clear logs table: %w", err)
	}

	for _, snap := range store.Snapshot() {
		recordJSON, err := json.Marshal(snap.Record)
		if err != nil {
			return fmt.Errorf("marshal job %s: %w", snap.Record.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO jobs (id, version, record) VALUES (?, ?, ?)",
			snap.Record.ID, snap.Version, string(recordJSON),
		); err != nil {
			return fmt.Errorf("insert job %s: %w", snap.Record.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO logs (id, log) VALUES (?, ?)",
			snap.Record.ID, snap.Log,
		); err != nil {
			return fmt.Errorf("insert log %s: %w", snap.Record.ID, err)
		}
	}

	return tx.Commit()
}

// Load reads every job back from the snapshot file at path. A missing file
// is not an error; it yields an empty slice, matching a fresh process with
// no prior snapshot.
func Load(ctx context.Context, path string) ([]job.Snapshot, error) {
	db, err := open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT jobs.id, jobs.version, jobs.record, COALESCE(logs.log, '')
		FROM jobs LEFT JOIN logs ON logs.id = jobs.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var out []job.Snapshot
	for rows.Next() {
		var (
			id        string
			version   uint64
			recordRaw string
			logText   string
		)
		if err := rows.Scan(&id, &version, &recordRaw, &logText); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		var rec job.Record
		if err := json.Unmarshal([]byte(recordRaw), &rec); err != nil {
			return nil, fmt.Errorf("unmarshal job %s: %w", id, err)
		}
		out = append(out, job.Snapshot{Record: rec, Version: version, Log: logText})
	}
	return out, rows.Err()
}
