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

package profiles

import (
	"testing"
	"time"

	"github.com/cyra-app/cyra/pkg/assert"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/cyra-app/cyra/pkg/clock"
)

// recordingSyncer records lifecycle calls into the sync engine
type recordingSyncer struct {
	severs int
	inits  int
}

func (r *recordingSyncer) HandleProfileSwitch() {
	r.severs++
}

func (r *recordingSyncer) Init() error {
	r.inits++
	return nil
}

func newTestManager(t *testing.T) (*Manager, *store.Store, *recordingSyncer, *clock.Mock) {
	t.Helper()

	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()
	s := store.New(db, c)
	syncer := &recordingSyncer{}

	return NewManager(s, syncer), s, syncer, c
}

func TestCreateSeversCloudLink(t *testing.T) {
	m, s, syncer, _ := newTestManager(t)

	profile, err := m.Create("🦋", "Dana", true)
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}

	assert.Equal(t, syncer.severs, 1, "sever count mismatch")
	assert.Equal(t, syncer.inits, 1, "init count mismatch")

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatalf("getting active profile: %v", err)
	}
	assert.Equal(t, activeID, profile.ID, "active profile mismatch")
}

func TestCreateDuplicateEmoji(t *testing.T) {
	m, _, syncer, _ := newTestManager(t)

	if _, err := m.Create("🦋", "", true); err != nil {
		t.Fatalf("creating profile: %v", err)
	}

	_, err := m.Create("🦋", "", false)
	assert.EqualErr(t, err, store.ErrDuplicateEmoji, "error mismatch")

	// the link is severed before the store rejects the duplicate
	assert.Equal(t, syncer.severs, 2, "sever count mismatch")
}

func TestSelect(t *testing.T) {
	m, s, syncer, _ := newTestManager(t)

	a, err := m.Create("🦋", "", true)
	if err != nil {
		t.Fatalf("creating profile a: %v", err)
	}
	b, err := m.Create("🌙", "", false)
	if err != nil {
		t.Fatalf("creating profile b: %v", err)
	}

	if err := m.Select(b.ID); err != nil {
		t.Fatalf("selecting profile: %v", err)
	}

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatalf("getting active profile: %v", err)
	}
	assert.Equal(t, activeID, b.ID, "active profile mismatch")
	assert.NotEqual(t, activeID, a.ID, "previous profile should not be active")
	assert.Equal(t, syncer.severs, 3, "sever count mismatch")
}

func TestSelectNotFound(t *testing.T) {
	m, _, _, _ := newTestManager(t)

	if _, err := m.Create("🦋", "", true); err != nil {
		t.Fatalf("creating profile: %v", err)
	}

	err := m.Select("no-such-id")
	assert.EqualErr(t, err, store.ErrProfileNotFound, "error mismatch")
}

func TestDeletePromotesMostRecentlyActive(t *testing.T) {
	m, s, _, c := newTestManager(t)

	a, err := m.Create("🦋", "", true)
	if err != nil {
		t.Fatalf("creating profile a: %v", err)
	}
	c.Advance(time.Hour)
	b, err := m.Create("🌙", "", false)
	if err != nil {
		t.Fatalf("creating profile b: %v", err)
	}
	c.Advance(time.Hour)
	d, err := m.Create("🌸", "", false)
	if err != nil {
		t.Fatalf("creating profile d: %v", err)
	}

	// b becomes the most recently active of the survivors
	c.Advance(time.Hour)
	if err := m.Select(b.ID); err != nil {
		t.Fatalf("selecting profile b: %v", err)
	}
	c.Advance(time.Hour)
	if err := m.Select(a.ID); err != nil {
		t.Fatalf("selecting profile a: %v", err)
	}

	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatalf("getting active profile: %v", err)
	}
	assert.Equal(t, activeID, b.ID, "promoted profile mismatch")
	assert.NotEqual(t, activeID, d.ID, "less recently active profile should not be promoted")
}

func TestDeleteInactiveKeepsActive(t *testing.T) {
	m, s, _, _ := newTestManager(t)

	a, err := m.Create("🦋", "", true)
	if err != nil {
		t.Fatalf("creating profile a: %v", err)
	}
	b, err := m.Create("🌙", "", false)
	if err != nil {
		t.Fatalf("creating profile b: %v", err)
	}

	if err := m.Delete(b.ID); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatalf("getting active profile: %v", err)
	}
	assert.Equal(t, activeID, a.ID, "active profile mismatch")
}

func TestDeleteLastProfile(t *testing.T) {
	m, s, _, _ := newTestManager(t)

	a, err := m.Create("🦋", "", true)
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}

	if err := m.Delete(a.ID); err != nil {
		t.Fatalf("deleting profile: %v", err)
	}

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatalf("getting active profile: %v", err)
	}
	assert.Equal(t, activeID, "", "active pointer should be unset")
}

func TestUpdateSeversCloudLink(t *testing.T) {
	m, s, syncer, _ := newTestManager(t)

	a, err := m.Create("🦋", "", true)
	if err != nil {
		t.Fatalf("creating profile: %v", err)
	}
	seversBefore := syncer.severs

	name := "Dana"
	updated, err := m.Update(a.ID, store.ProfileUpdate{Name: &name})
	if err != nil {
		t.Fatalf("updating profile: %v", err)
	}
	assert.Equal(t, updated.Name, "Dana", "name mismatch")
	assert.Equal(t, syncer.severs, seversBefore+1, "sever count mismatch")

	got, err := s.GetProfile(a.ID)
	if err != nil {
		t.Fatalf("getting profile: %v", err)
	}
	assert.Equal(t, got.Name, "Dana", "persisted name mismatch")
}
