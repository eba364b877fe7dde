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

// Package store implements the local profile store. Profiles are persisted as
// one JSON document in the system table and mutated with whole-list
// read-modify-write inside a transaction, so every call is last-writer-wins at
// the list granularity.
package store

import (
	"database/sql"

	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/cyra-app/cyra/pkg/cli/utils"
	"github.com/cyra-app/cyra/pkg/clock"
	"github.com/pkg/errors"
)

// ErrDuplicateEmoji is an error for creating a profile with an emoji that is
// already used by another profile
var ErrDuplicateEmoji = errors.New("a profile with the emoji already exists")

// ErrProfileNotFound is an error for operating on a profile that does not exist
var ErrProfileNotFound = errors.New("profile not found")

// ErrNoActiveProfile is an error for operations that require an active profile
var ErrNoActiveProfile = errors.New("no active profile")

// Store provides access to the locally persisted profiles and the scalar
// active-profile pointer
type Store struct {
	db    *database.DB
	clock clock.Clock
}

// New returns a new store backed by the given database
func New(db *database.DB, c clock.Clock) *Store {
	return &Store{db: db, clock: c}
}

func getProfiles(q database.Querier) ([]Profile, error) {
	var ret []Profile

	err := database.GetSystemJSON(q, consts.SystemProfiles, &ret)
	if errors.Cause(err) == sql.ErrNoRows {
		return []Profile{}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "reading profiles")
	}

	return ret, nil
}

func saveProfiles(q database.Querier, profiles []Profile) error {
	if err := database.UpsertSystemJSON(q, consts.SystemProfiles, profiles); err != nil {
		return errors.Wrap(err, "writing profiles")
	}

	return nil
}

// GetProfiles returns all profiles in the store
func (s *Store) GetProfiles() ([]Profile, error) {
	return getProfiles(s.db)
}

// SaveProfiles overwrites the full profile list
func (s *Store) SaveProfiles(profiles []Profile) error {
	return saveProfiles(s.db, profiles)
}

// GetActiveProfileID returns the id of the active profile, or an empty string
// if no profile is active
func (s *Store) GetActiveProfileID() (string, error) {
	var ret string

	err := database.GetSystem(s.db, consts.SystemActiveProfile, &ret)
	if errors.Cause(err) == sql.ErrNoRows {
		return "", nil
	} else if err != nil {
		return "", errors.Wrap(err, "reading active profile pointer")
	}

	return ret, nil
}

// SetActiveProfileID points the active-profile pointer at the profile with
// the given id and refreshes its last active timestamp. It fails with
// ErrProfileNotFound if no such profile exists, so the pointer can never
// reference a nonexistent profile.
func (s *Store) SetActiveProfileID(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	profiles, err := getProfiles(tx)
	if err != nil {
		tx.Rollback()
		return err
	}

	idx := findProfile(profiles, id)
	if idx == -1 {
		tx.Rollback()
		return ErrProfileNotFound
	}

	profiles[idx].LastActive = s.clock.Now().Unix()

	if err := saveProfiles(tx, profiles); err != nil {
		tx.Rollback()
		return err
	}
	if err := database.UpsertSystem(tx, consts.SystemActiveProfile, id); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "writing active profile pointer")
	}

	return errors.Wrap(tx.Commit(), "committing a transaction")
}

// ClearActiveProfileID unsets the active-profile pointer
func (s *Store) ClearActiveProfileID() error {
	return database.DeleteSystem(s.db, consts.SystemActiveProfile)
}

// GetActiveProfile returns the active profile. It fails with
// ErrNoActiveProfile when the pointer is unset.
func (s *Store) GetActiveProfile() (Profile, error) {
	id, err := s.GetActiveProfileID()
	if err != nil {
		return Profile{}, err
	}
	if id == "" {
		return Profile{}, ErrNoActiveProfile
	}

	return s.GetProfile(id)
}

// GetProfile returns the profile with the given id
func (s *Store) GetProfile(id string) (Profile, error) {
	profiles, err := s.GetProfiles()
	if err != nil {
		return Profile{}, err
	}

	idx := findProfile(profiles, id)
	if idx == -1 {
		return Profile{}, ErrProfileNotFound
	}

	return profiles[idx], nil
}

// CreateProfile allocates an id and timestamps, persists a new profile with
// default settings and empty collections, and optionally activates it in the
// same transaction. It fails with ErrDuplicateEmoji if the emoji is already
// used by an existing profile.
func (s *Store) CreateProfile(emoji, name string, activate bool) (Profile, error) {
	id, err := utils.GenerateUUID()
	if err != nil {
		return Profile{}, errors.Wrap(err, "allocating profile id")
	}

	now := s.clock.Now().Unix()
	profile := Profile{
		ID:          id,
		Emoji:       emoji,
		Name:        name,
		CreatedAt:   now,
		LastActive:  now,
		Settings:    DefaultSettings(),
		Cycles:      []Cycle{},
		Symptoms:    []Symptom{},
		Notes:       []Note{},
		Predictions: []Prediction{},
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Profile{}, errors.Wrap(err, "beginning a transaction")
	}

	profiles, err := getProfiles(tx)
	if err != nil {
		tx.Rollback()
		return Profile{}, err
	}

	for _, p := range profiles {
		if p.Emoji == emoji {
			tx.Rollback()
			return Profile{}, ErrDuplicateEmoji
		}
	}

	profiles = append(profiles, profile)
	if err := saveProfiles(tx, profiles); err != nil {
		tx.Rollback()
		return Profile{}, err
	}

	if activate {
		if err := database.UpsertSystem(tx, consts.SystemActiveProfile, id); err != nil {
			tx.Rollback()
			return Profile{}, errors.Wrap(err, "writing active profile pointer")
		}
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, errors.Wrap(err, "committing a transaction")
	}

	return profile, nil
}

// UpdateProfile shallow-merges the given patch into the profile with the
// given id and refreshes its last active timestamp. It returns the updated
// record.
func (s *Store) UpdateProfile(id string, patch ProfileUpdate) (Profile, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Profile{}, errors.Wrap(err, "beginning a transaction")
	}

	profiles, err := getProfiles(tx)
	if err != nil {
		tx.Rollback()
		return Profile{}, err
	}

	idx := findProfile(profiles, id)
	if idx == -1 {
		tx.Rollback()
		return Profile{}, ErrProfileNotFound
	}

	if patch.Emoji != nil {
		for i, p := range profiles {
			if i != idx && p.Emoji == *patch.Emoji {
				tx.Rollback()
				return Profile{}, ErrDuplicateEmoji
			}
		}
		profiles[idx].Emoji = *patch.Emoji
	}
	if patch.Name != nil {
		profiles[idx].Name = *patch.Name
	}
	if patch.Settings != nil {
		profiles[idx].Settings = *patch.Settings
	}
	if patch.Cycles != nil {
		profiles[idx].Cycles = *patch.Cycles
	}
	if patch.Symptoms != nil {
		profiles[idx].Symptoms = *patch.Symptoms
	}
	if patch.Notes != nil {
		profiles[idx].Notes = *patch.Notes
	}
	if patch.Predictions != nil {
		profiles[idx].Predictions = *patch.Predictions
	}
	profiles[idx].LastActive = s.clock.Now().Unix()

	if err := saveProfiles(tx, profiles); err != nil {
		tx.Rollback()
		return Profile{}, err
	}

	if err := tx.Commit(); err != nil {
		return Profile{}, errors.Wrap(err, "committing a transaction")
	}

	return profiles[idx], nil
}

// DeleteProfile removes the profile with the given id together with its
// profile-scoped sync keys. If the deleted profile was active, the active
// pointer is cleared in the same transaction; the caller is responsible for
// promoting another profile before the UI next reads state.
func (s *Store) DeleteProfile(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "beginning a transaction")
	}

	profiles, err := getProfiles(tx)
	if err != nil {
		tx.Rollback()
		return err
	}

	idx := findProfile(profiles, id)
	if idx == -1 {
		tx.Rollback()
		return ErrProfileNotFound
	}

	profiles = append(profiles[:idx], profiles[idx+1:]...)
	if err := saveProfiles(tx, profiles); err != nil {
		tx.Rollback()
		return err
	}

	var activeID string
	err = database.GetSystem(tx, consts.SystemActiveProfile, &activeID)
	if err != nil && errors.Cause(err) != sql.ErrNoRows {
		tx.Rollback()
		return errors.Wrap(err, "reading active profile pointer")
	}
	if activeID == id {
		if err := database.DeleteSystem(tx, consts.SystemActiveProfile); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "clearing active profile pointer")
		}
	}

	if err := database.DeleteSystem(tx, consts.SyncSettingsKey(id)); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "deleting sync settings")
	}
	if err := database.DeleteSystem(tx, consts.LinkedAccountsKey(id)); err != nil {
		tx.Rollback()
		return errors.Wrap(err, "deleting linked accounts")
	}

	return errors.Wrap(tx.Commit(), "committing a transaction")
}

func findProfile(profiles []Profile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}

	return -1
}
