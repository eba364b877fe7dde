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
	"testing"
	"time"

	"github.com/cyra-app/cyra/pkg/assert"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/cyra-app/cyra/pkg/clock"
	"github.com/pkg/errors"
)

func newTestStore(t *testing.T) (*Store, *clock.Mock) {
	t.Helper()

	db := database.InitTestMemoryDB(t)
	c := clock.NewMock()

	return New(db, c), c
}

func TestCreateProfile(t *testing.T) {
	s, c := newTestStore(t)

	p, err := s.CreateProfile("🦋", "Luna", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating profile"))
	}

	assert.NotEqual(t, p.ID, "", "profile id should be allocated")
	assert.Equal(t, p.Emoji, "🦋", "emoji mismatch")
	assert.Equal(t, p.Name, "Luna", "name mismatch")
	assert.Equal(t, p.CreatedAt, c.Now().Unix(), "createdAt mismatch")
	assert.DeepEqual(t, p.Settings, DefaultSettings(), "settings mismatch")
	assert.Equal(t, len(p.Cycles), 0, "cycles should start empty")

	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting active profile id"))
	}
	assert.Equal(t, activeID, p.ID, "profile should have been activated")
}

func TestCreateProfileDuplicateEmoji(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.CreateProfile("🦋", "", true); err != nil {
		t.Fatal(errors.Wrap(err, "creating first profile"))
	}

	_, err := s.CreateProfile("🦋", "other", false)
	assert.Equal(t, errors.Cause(err), ErrDuplicateEmoji, "error mismatch")

	// the store must be left unchanged
	profiles, err := s.GetProfiles()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting profiles"))
	}
	assert.Equal(t, len(profiles), 1, "profile count mismatch")
}

func TestEmojiUniqueness(t *testing.T) {
	s, _ := newTestStore(t)

	emojis := []string{"🦋", "🌙", "🌸", "🦋", "🌙"}
	for _, e := range emojis {
		s.CreateProfile(e, "", false)
	}

	profiles, err := s.GetProfiles()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting profiles"))
	}

	seen := map[string]bool{}
	for _, p := range profiles {
		if seen[p.Emoji] {
			t.Errorf("duplicate emoji %s in the store", p.Emoji)
		}
		seen[p.Emoji] = true
	}
	assert.Equal(t, len(profiles), 3, "profile count mismatch")
}

func TestUpdateProfile(t *testing.T) {
	s, c := newTestStore(t)

	p, err := s.CreateProfile("🦋", "", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating profile"))
	}

	c.Advance(time.Hour)

	name := "Selene"
	cycles := []Cycle{{ID: "c1", StartDate: "2024-01-01", PeriodDays: []string{"2024-01-01"}}}
	got, err := s.UpdateProfile(p.ID, ProfileUpdate{Name: &name, Cycles: &cycles})
	if err != nil {
		t.Fatal(errors.Wrap(err, "updating profile"))
	}

	assert.Equal(t, got.Name, "Selene", "name should be updated")
	assert.DeepEqual(t, got.Cycles, cycles, "cycles should be updated")
	assert.Equal(t, got.Emoji, "🦋", "emoji should be untouched")
	assert.Equal(t, got.LastActive, c.Now().Unix(), "lastActive should be refreshed")
	assert.NotEqual(t, got.LastActive, got.CreatedAt, "lastActive should have moved")
}

func TestUpdateProfileNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	name := "x"
	_, err := s.UpdateProfile("no-such-id", ProfileUpdate{Name: &name})
	assert.Equal(t, errors.Cause(err), ErrProfileNotFound, "error mismatch")
}

func TestDeleteProfile(t *testing.T) {
	s, _ := newTestStore(t)

	p1, err := s.CreateProfile("🦋", "", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating first profile"))
	}
	p2, err := s.CreateProfile("🌙", "", false)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating second profile"))
	}

	if err := s.DeleteProfile(p1.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting active profile"))
	}

	// deleting the active profile must clear the pointer
	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting active profile id"))
	}
	assert.Equal(t, activeID, "", "active pointer should be cleared")

	profiles, err := s.GetProfiles()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting profiles"))
	}
	assert.Equal(t, len(profiles), 1, "profile count mismatch")
	assert.Equal(t, profiles[0].ID, p2.ID, "remaining profile mismatch")
}

func TestDeleteProfileNotFound(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.DeleteProfile("no-such-id")
	assert.Equal(t, errors.Cause(err), ErrProfileNotFound, "error mismatch")
}

func TestDeleteProfileRemovesSyncKeys(t *testing.T) {
	s, _ := newTestStore(t)

	p, err := s.CreateProfile("🦋", "", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating profile"))
	}

	if err := s.SaveSyncSettings(p.ID, SyncSettings{Enabled: true, Username: "alice", LastSync: 42}); err != nil {
		t.Fatal(errors.Wrap(err, "saving sync settings"))
	}
	if err := s.AddLinkedAccount(p.ID, "alice"); err != nil {
		t.Fatal(errors.Wrap(err, "adding linked account"))
	}

	if err := s.DeleteProfile(p.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting profile"))
	}

	settings, err := s.GetSyncSettings(p.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting sync settings"))
	}
	assert.DeepEqual(t, settings, SyncSettings{}, "sync settings should be gone")

	accounts, err := s.GetLinkedAccounts(p.ID)
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting linked accounts"))
	}
	assert.Equal(t, len(accounts), 0, "linked accounts should be gone")
}

func TestActivePointerValidity(t *testing.T) {
	s, _ := newTestStore(t)

	// pointer can only be set to an existing profile
	err := s.SetActiveProfileID("no-such-id")
	assert.Equal(t, errors.Cause(err), ErrProfileNotFound, "error mismatch")

	p1, err := s.CreateProfile("🦋", "", true)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating first profile"))
	}
	p2, err := s.CreateProfile("🌙", "", false)
	if err != nil {
		t.Fatal(errors.Wrap(err, "creating second profile"))
	}

	if err := s.SetActiveProfileID(p2.ID); err != nil {
		t.Fatal(errors.Wrap(err, "selecting second profile"))
	}
	if err := s.DeleteProfile(p1.ID); err != nil {
		t.Fatal(errors.Wrap(err, "deleting inactive profile"))
	}

	// after every step the pointer must either be unset or name a present profile
	activeID, err := s.GetActiveProfileID()
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting active profile id"))
	}
	assert.Equal(t, activeID, p2.ID, "pointer should still name the remaining profile")
}

func TestGetActiveProfileNone(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetActiveProfile()
	assert.Equal(t, errors.Cause(err), ErrNoActiveProfile, "error mismatch")
}

func TestSyncSettingsRoundtrip(t *testing.T) {
	s, _ := newTestStore(t)

	settings, err := s.GetSyncSettings("p1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting absent sync settings"))
	}
	assert.DeepEqual(t, settings, SyncSettings{}, "absent settings should be zero-valued")

	want := SyncSettings{Enabled: true, Username: "alice", LastSync: 1700000000}
	if err := s.SaveSyncSettings("p1", want); err != nil {
		t.Fatal(errors.Wrap(err, "saving sync settings"))
	}

	got, err := s.GetSyncSettings("p1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting sync settings"))
	}
	assert.DeepEqual(t, got, want, "sync settings roundtrip mismatch")
}

func TestLinkedAccountsAppendOnly(t *testing.T) {
	s, _ := newTestStore(t)

	for _, username := range []string{"alice", "bob", "alice"} {
		if err := s.AddLinkedAccount("p1", username); err != nil {
			t.Fatal(errors.Wrap(err, "adding linked account"))
		}
	}

	got, err := s.GetLinkedAccounts("p1")
	if err != nil {
		t.Fatal(errors.Wrap(err, "getting linked accounts"))
	}
	assert.DeepEqual(t, got, []string{"alice", "bob"}, "linked accounts mismatch")
}

func TestFirstLaunch(t *testing.T) {
	s, _ := newTestStore(t)

	first, err := s.IsFirstLaunch()
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking first launch"))
	}
	assert.Equal(t, first, true, "fresh store should report first launch")

	if err := s.MarkLaunched(); err != nil {
		t.Fatal(errors.Wrap(err, "marking launched"))
	}

	first, err = s.IsFirstLaunch()
	if err != nil {
		t.Fatal(errors.Wrap(err, "checking first launch again"))
	}
	assert.Equal(t, first, false, "store should no longer report first launch")
}
