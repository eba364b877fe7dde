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

package store

import (
	"database/sql"

	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/pkg/errors"
)

// GetSyncSettings returns the persisted sync settings of the profile with the
// given id. An absent entry yields zero-value settings, not an error.
func (s *Store) GetSyncSettings(profileID string) (SyncSettings, error) {
	var ret SyncSettings

	err := database.GetSystemJSON(s.db, consts.SyncSettingsKey(profileID), &ret)
	if errors.Cause(err) == sql.ErrNoRows {
		return SyncSettings{}, nil
	} else if err != nil {
		return SyncSettings{}, errors.Wrap(err, "reading sync settings")
	}

	return ret, nil
}

// SaveSyncSettings persists the sync settings of the profile with the given id
func (s *Store) SaveSyncSettings(profileID string, settings SyncSettings) error {
	if err := database.UpsertSystemJSON(s.db, consts.SyncSettingsKey(profileID), settings); err != nil {
		return errors.Wrap(err, "writing sync settings")
	}

	return nil
}

// DeleteSyncSettings removes the persisted sync settings of the profile with
// the given id
func (s *Store) DeleteSyncSettings(profileID string) error {
	if err := database.DeleteSystem(s.db, consts.SyncSettingsKey(profileID)); err != nil {
		return errors.Wrap(err, "deleting sync settings")
	}

	return nil
}

// GetLinkedAccounts returns the list of cloud usernames the profile has ever
// linked. The list is bookkeeping for display only, never an authorization
// check.
func (s *Store) GetLinkedAccounts(profileID string) ([]string, error) {
	var ret []string

	err := database.GetSystemJSON(s.db, consts.LinkedAccountsKey(profileID), &ret)
	if errors.Cause(err) == sql.ErrNoRows {
		return []string{}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "reading linked accounts")
	}

	return ret, nil
}

// AddLinkedAccount appends the username to the profile's linked-accounts list.
// The list is append-only and deduplicated.
func (s *Store) AddLinkedAccount(profileID, username string) error {
	accounts, err := s.GetLinkedAccounts(profileID)
	if err != nil {
		return err
	}

	for _, a := range accounts {
		if a == username {
			return nil
		}
	}

	accounts = append(accounts, username)
	if err := database.UpsertSystemJSON(s.db, consts.LinkedAccountsKey(profileID), accounts); err != nil {
		return errors.Wrap(err, "writing linked accounts")
	}

	return nil
}

// GetSession returns the persisted session key and its expiry. Empty values
// mean no session is stored.
func (s *Store) GetSession() (string, int64, error) {
	var key string
	var expiry int64

	err := database.GetSystem(s.db, consts.SystemSessionKey, &key)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		return "", 0, errors.Wrap(err, "reading session key")
	}
	err = database.GetSystem(s.db, consts.SystemSessionKeyExpiry, &expiry)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		return "", 0, errors.Wrap(err, "reading session key expiry")
	}

	return key, expiry, nil
}

// SaveSession persists the session key and its expiry
func (s *Store) SaveSession(key string, expiry int64) error {
	if err := database.UpsertSystem(s.db, consts.SystemSessionKey, key); err != nil {
		return errors.Wrap(err, "writing session key")
	}
	if err := database.UpsertSystem(s.db, consts.SystemSessionKeyExpiry, expiry); err != nil {
		return errors.Wrap(err, "writing session key expiry")
	}

	return nil
}

// DeleteSession removes the persisted session
func (s *Store) DeleteSession() error {
	if err := database.DeleteSystem(s.db, consts.SystemSessionKey); err != nil {
		return errors.Wrap(err, "deleting session key")
	}
	if err := database.DeleteSystem(s.db, consts.SystemSessionKeyExpiry); err != nil {
		return errors.Wrap(err, "deleting session key expiry")
	}

	return nil
}

// IsFirstLaunch reports whether the environment has been launched before
func (s *Store) IsFirstLaunch() (bool, error) {
	var val string

	err := database.GetSystem(s.db, consts.SystemFirstLaunch, &val)
	if errors.Cause(err) == sql.ErrNoRows {
		return true, nil
	} else if err != nil {
		return false, errors.Wrap(err, "reading first launch flag")
	}

	return val != "0", nil
}

// MarkLaunched clears the first launch flag
func (s *Store) MarkLaunched() error {
	if err := database.UpsertSystem(s.db, consts.SystemFirstLaunch, "0"); err != nil {
		return errors.Wrap(err, "writing first launch flag")
	}

	return nil
}
