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

// Package profiles implements the profile lifecycle on top of the store and
// the sync engine. Every lifecycle operation severs the current cloud link
// before taking effect, so a cloud identity signed in under one profile is
// never carried over to another.
package profiles

import (
	"sort"

	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/pkg/errors"
)

// Syncer is the part of the sync engine the lifecycle manager depends on
type Syncer interface {
	HandleProfileSwitch()
	Init() error
}

// Manager performs profile lifecycle operations
type Manager struct {
	store  *store.Store
	syncer Syncer
}

// NewManager returns a new lifecycle manager
func NewManager(s *store.Store, syncer Syncer) *Manager {
	return &Manager{store: s, syncer: syncer}
}

// Create severs the cloud link and creates a new profile. If activate is
// true the new profile becomes the active one.
func (m *Manager) Create(emoji, name string, activate bool) (store.Profile, error) {
	m.syncer.HandleProfileSwitch()

	profile, err := m.store.CreateProfile(emoji, name, activate)
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "creating profile")
	}

	if err := m.syncer.Init(); err != nil {
		return store.Profile{}, errors.Wrap(err, "reloading sync state")
	}

	return profile, nil
}

// Select severs the cloud link and makes the given profile active
func (m *Manager) Select(id string) error {
	m.syncer.HandleProfileSwitch()

	if err := m.store.SetActiveProfileID(id); err != nil {
		return errors.Wrap(err, "setting active profile")
	}

	if err := m.syncer.Init(); err != nil {
		return errors.Wrap(err, "reloading sync state")
	}

	return nil
}

// Delete severs the cloud link and removes the given profile. If the deleted
// profile was active, the most recently active remaining profile is promoted
// so the active pointer never dangles.
func (m *Manager) Delete(id string) error {
	m.syncer.HandleProfileSwitch()

	if err := m.store.DeleteProfile(id); err != nil {
		return errors.Wrap(err, "deleting profile")
	}

	activeID, err := m.store.GetActiveProfileID()
	if err != nil {
		return errors.Wrap(err, "getting active profile")
	}
	if activeID == "" {
		if err := m.promoteMostRecent(); err != nil {
			return err
		}
	}

	if err := m.syncer.Init(); err != nil {
		return errors.Wrap(err, "reloading sync state")
	}

	return nil
}

// Update severs the cloud link and applies a partial update to the given
// profile
func (m *Manager) Update(id string, patch store.ProfileUpdate) (store.Profile, error) {
	m.syncer.HandleProfileSwitch()

	profile, err := m.store.UpdateProfile(id, patch)
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "updating profile")
	}

	if err := m.syncer.Init(); err != nil {
		return store.Profile{}, errors.Wrap(err, "reloading sync state")
	}

	return profile, nil
}

func (m *Manager) promoteMostRecent() error {
	profiles, err := m.store.GetProfiles()
	if err != nil {
		return errors.Wrap(err, "getting profiles")
	}
	if len(profiles) == 0 {
		return nil
	}

	sort.Slice(profiles, func(i, j int) bool {
		return profiles[i].LastActive > profiles[j].LastActive
	})

	if err := m.store.SetActiveProfileID(profiles[0].ID); err != nil {
		return errors.Wrap(err, "promoting profile")
	}

	return nil
}
