/* Copyright 2025 Cyra Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package database provides the local SQLite persistence for Cyra. All durable
// state is kept in a single key-value "system" table, with values serialized
// as text.
package database

import (
	"database/sql"
	"encoding/json"

	// sqlite driver
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// DB is a database connection
type DB struct {
	*sql.DB
}

// Querier is the subset of database operations needed by the key-value
// helpers. It is satisfied by both *DB and *sql.Tx so that the helpers can be
// used inside and outside transactions.
type Querier interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// Open opens the connection with the database at the given path
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening database at %s", path)
	}

	return &DB{db}, nil
}

// InitSchema creates the tables and indices if they do not exist
func InitSchema(db *DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS system
		(
			key string NOT NULL,
			value text NOT NULL
		)`)
	if err != nil {
		return errors.Wrap(err, "creating system table")
	}

	_, err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_system_key ON system(key)`)
	if err != nil {
		return errors.Wrap(err, "creating system index")
	}

	return nil
}

// GetSystem scans the system table value for the given key into the dest
func GetSystem(q Querier, key string, dest interface{}) error {
	if err := q.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(dest); err != nil {
		return errors.Wrapf(err, "finding system configuration for %s", key)
	}

	return nil
}

// UpsertSystem inserts the given key-value pair into the system table, or
// updates the value if the key already exists
func UpsertSystem(q Querier, key string, val interface{}) error {
	var count int
	if err := q.QueryRow("SELECT count(*) FROM system WHERE key = ?", key).Scan(&count); err != nil {
		return errors.Wrapf(err, "counting %s", key)
	}

	if count == 0 {
		if _, err := q.Exec("INSERT INTO system (key, value) VALUES (?, ?)", key, val); err != nil {
			return errors.Wrapf(err, "inserting %s", key)
		}
	} else {
		if _, err := q.Exec("UPDATE system SET value = ? WHERE key = ?", val, key); err != nil {
			return errors.Wrapf(err, "updating %s", key)
		}
	}

	return nil
}

// DeleteSystem removes the system table row with the given key
func DeleteSystem(q Querier, key string) error {
	if _, err := q.Exec("DELETE FROM system WHERE key = ?", key); err != nil {
		return errors.Wrapf(err, "deleting %s", key)
	}

	return nil
}

// GetSystemJSON unmarshals the system table value for the given key into the
// dest. It returns sql.ErrNoRows as the cause when the key is absent so that
// callers can distinguish "unset" from failure.
func GetSystemJSON(q Querier, key string, dest interface{}) error {
	var raw string
	if err := q.QueryRow("SELECT value FROM system WHERE key = ?", key).Scan(&raw); err != nil {
		return errors.Wrapf(err, "finding system configuration for %s", key)
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return errors.Wrapf(err, "unmarshalling the value for %s", key)
	}

	return nil
}

// UpsertSystemJSON marshals the given value and stores it in the system table
// under the given key
func UpsertSystemJSON(q Querier, key string, val interface{}) error {
	b, err := json.Marshal(val)
	if err != nil {
		return errors.Wrapf(err, "marshalling the value for %s", key)
	}

	return UpsertSystem(q, key, string(b))
}
