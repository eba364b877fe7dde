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

// Package engine implements the profile-scoped synchronization state machine.
// It orchestrates the local store and the remote account client, owns the
// runtime sync state, and enforces the isolation rule that a cloud identity
// signed in under one profile is never reachable after the active profile
// changes.
package engine

import (
	"sync"
	"time"

	"github.com/cyra-app/cyra/pkg/cli/client"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/cyra-app/cyra/pkg/clock"
	"github.com/pkg/errors"
)

// ErrNotSignedIn is an error for sync operations that require a session
var ErrNotSignedIn = errors.New("not signed in")

// ErrNoNetwork is an error for remote operations attempted while the backend
// is unreachable
var ErrNoNetwork = errors.New("no network connection")

// ErrSyncInProgress is an error for a sync requested while another sync is
// already in flight
var ErrSyncInProgress = errors.New("sync already in progress")

// AutoSyncInterval is the minimum delay between two automatic syncs
const AutoSyncInterval = time.Hour

// Remote is the surface of the backend the engine depends on. It is satisfied
// by client.Client.
type Remote interface {
	IsConfigured() bool
	CheckConnection() bool
	CreateAccount(username, password string) error
	SignIn(username, password string) (client.Session, error)
	SignOut() error
	SetSession(key string)
	ClearSession()
	GetCurrentUser() (*client.Identity, error)
	ExportBlob(blob client.Blob) error
	ImportBlob() (client.ImportResult, error)
	DeleteAccount() error
}

// State is an immutable snapshot of the engine's runtime sync state. The
// enabled/username/lastSync parts are also persisted per profile; the rest is
// runtime-only.
type State struct {
	SignedIn    bool
	Username    string
	SyncEnabled bool
	LastSync    int64
	Syncing     bool
	Err         error
}

// SyncResult describes the outcome of one sync operation
type SyncResult struct {
	Success        bool
	ProfilesSynced int
	CyclesSynced   int
	Message        string
}

// Listener receives a state snapshot after every transition
type Listener func(State)

// Engine is the synchronization state machine. Construct one per process with
// New and share it by reference; tests construct isolated instances.
type Engine struct {
	store    *store.Store
	remote   Remote
	clock    clock.Clock
	strategy ReconciliationStrategy

	mu        sync.Mutex
	state     State
	listeners map[int]Listener
	nextID    int

	// syncMu makes full sync, upload and download single-flight
	syncMu sync.Mutex
	wg     sync.WaitGroup
}

// New returns a new engine. The returned engine reports a signed-out state
// until Init is called.
func New(s *store.Store, remote Remote, c clock.Clock) *Engine {
	return &Engine{
		store:     s,
		remote:    remote,
		clock:     c,
		strategy:  OverwriteStrategy{},
		listeners: map[int]Listener{},
	}
}

// SetStrategy replaces the reconciliation strategy applied during downloads
func (e *Engine) SetStrategy(s ReconciliationStrategy) {
	e.strategy = s
}

// Init loads the persisted session and the active profile's sync settings
// into the runtime state. It is safe to call again after the active profile
// changes, so a profile previously linked to its own cloud identity is
// re-discovered.
func (e *Engine) Init() error {
	key, expiry, err := e.store.GetSession()
	if err != nil {
		return errors.Wrap(err, "getting session")
	}

	now := e.clock.Now().Unix()
	if key != "" && expiry != 0 && expiry <= now {
		log.Debug("discarding expired session\n")
		if err := e.store.DeleteSession(); err != nil {
			return errors.Wrap(err, "deleting expired session")
		}
		key = ""
	}

	var settings store.SyncSettings
	profileID, err := e.store.GetActiveProfileID()
	if err != nil {
		return errors.Wrap(err, "getting active profile")
	}
	if profileID != "" {
		settings, err = e.store.GetSyncSettings(profileID)
		if err != nil {
			return errors.Wrap(err, "getting sync settings")
		}
	}

	if key != "" {
		e.remote.SetSession(key)
	} else {
		e.remote.ClearSession()
	}

	e.setState(func(s *State) {
		*s = State{
			SignedIn:    key != "",
			Username:    settings.Username,
			SyncEnabled: key != "" && settings.Enabled,
			LastSync:    settings.LastSync,
		}
	})

	return nil
}

// Subscribe registers a listener and returns a function that removes it.
// Listeners are invoked synchronously with a fully-formed snapshot.
func (e *Engine) Subscribe(l Listener) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextID
	e.nextID++
	e.listeners[id] = l

	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()

		delete(e.listeners, id)
	}
}

// State returns the current state snapshot
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

func (e *Engine) setState(mutate func(*State)) {
	e.mu.Lock()
	mutate(&e.state)
	snapshot := e.state

	listeners := make([]Listener, 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(snapshot)
	}
}

// CreateAccount registers a new cloud account and signs in as it
func (e *Engine) CreateAccount(username, password string) error {
	if !e.remote.CheckConnection() {
		return ErrNoNetwork
	}

	if err := e.remote.CreateAccount(username, password); err != nil {
		e.setState(func(s *State) {
			s.Err = err
		})
		return errors.Wrap(err, "creating account")
	}

	return e.SignIn(username, password)
}

// SignIn authenticates against the backend and links the cloud identity to
// the active profile. On success one full sync is scheduled asynchronously;
// call Wait to drain it.
func (e *Engine) SignIn(username, password string) error {
	if !e.remote.CheckConnection() {
		return ErrNoNetwork
	}

	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return errors.Wrap(err, "getting active profile")
	}

	session, err := e.remote.SignIn(username, password)
	if err != nil {
		e.setState(func(s *State) {
			s.SignedIn = false
			s.Err = err
		})
		return errors.Wrap(err, "signing in")
	}

	if err := e.store.SaveSession(session.Key, session.ExpiresAt); err != nil {
		return errors.Wrap(err, "saving session")
	}

	settings, err := e.store.GetSyncSettings(profile.ID)
	if err != nil {
		return errors.Wrap(err, "getting sync settings")
	}
	settings.Enabled = true
	settings.Username = username
	if err := e.store.SaveSyncSettings(profile.ID, settings); err != nil {
		return errors.Wrap(err, "saving sync settings")
	}

	// linking is additive bookkeeping for display, never an authorization check
	if err := e.store.AddLinkedAccount(profile.ID, username); err != nil {
		return errors.Wrap(err, "linking account")
	}

	e.setState(func(s *State) {
		s.SignedIn = true
		s.Username = username
		s.SyncEnabled = true
		s.LastSync = settings.LastSync
		s.Err = nil
	})

	e.scheduleSync()

	return nil
}

// SignOut ends the session. The server-side session deletion is best-effort;
// the local session is always cleared.
func (e *Engine) SignOut() error {
	if err := e.remote.SignOut(); err != nil {
		log.Debug("server-side sign-out failed: %v\n", err)
	}
	e.remote.ClearSession()

	if err := e.store.DeleteSession(); err != nil {
		return errors.Wrap(err, "deleting session")
	}

	profileID, err := e.store.GetActiveProfileID()
	if err != nil {
		return errors.Wrap(err, "getting active profile")
	}
	if profileID != "" {
		settings, err := e.store.GetSyncSettings(profileID)
		if err != nil {
			return errors.Wrap(err, "getting sync settings")
		}
		settings.Enabled = false
		if err := e.store.SaveSyncSettings(profileID, settings); err != nil {
			return errors.Wrap(err, "saving sync settings")
		}
	}

	e.setState(func(s *State) {
		s.SignedIn = false
		s.SyncEnabled = false
		s.Err = nil
	})

	return nil
}

// PerformFullSync reconciles the active profile with the cloud blob. If the
// remote has data, every mutable local collection is overwritten with the
// remote values; otherwise the full local profile is uploaded. The remote
// fetch always completes and is validated before any local overwrite begins.
func (e *Engine) PerformFullSync() (SyncResult, error) {
	if !e.syncMu.TryLock() {
		return SyncResult{Message: "sync already in progress"}, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()

	if err := e.checkSyncPreconditions(); err != nil {
		return SyncResult{}, err
	}

	e.setState(func(s *State) {
		s.Syncing = true
	})
	defer e.setState(func(s *State) {
		s.Syncing = false
	})

	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return e.failSync(errors.Wrap(err, "getting active profile"))
	}
	if !e.shouldProfileSync(profile) {
		return SyncResult{Message: "profile is not linked to the signed-in account"}, nil
	}

	result, err := e.remote.ImportBlob()
	if err != nil {
		return e.failSync(errors.Wrap(err, "fetching cloud data"))
	}

	var synced store.Profile
	if result.HasData {
		synced, err = e.applyBlob(profile, result.Blob)
		if err != nil {
			return e.failSync(err)
		}
	} else {
		now := e.clock.Now().Unix()
		if err := e.remote.ExportBlob(blobFromProfile(profile, now)); err != nil {
			return e.failSync(errors.Wrap(err, "uploading cloud data"))
		}
		synced = profile
	}

	if err := e.finishSync(profile.ID); err != nil {
		return e.failSync(err)
	}

	return SyncResult{
		Success:        true,
		ProfilesSynced: 1,
		CyclesSynced:   len(synced.Cycles),
	}, nil
}

// UploadToCloud pushes the active profile's full dataset to the cloud blob.
// It refuses to upload an empty shell that would mask existing remote data on
// a later device.
func (e *Engine) UploadToCloud() (SyncResult, error) {
	if !e.syncMu.TryLock() {
		return SyncResult{Message: "sync already in progress"}, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()

	if err := e.checkSyncPreconditions(); err != nil {
		return SyncResult{}, err
	}

	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return e.failSync(errors.Wrap(err, "getting active profile"))
	}
	if !profile.HasRecords() {
		return SyncResult{Message: "no data to sync"}, nil
	}

	e.setState(func(s *State) {
		s.Syncing = true
	})
	defer e.setState(func(s *State) {
		s.Syncing = false
	})

	now := e.clock.Now().Unix()
	if err := e.remote.ExportBlob(blobFromProfile(profile, now)); err != nil {
		return e.failSync(errors.Wrap(err, "uploading cloud data"))
	}

	if err := e.finishSync(profile.ID); err != nil {
		return e.failSync(err)
	}

	return SyncResult{
		Success:        true,
		ProfilesSynced: 1,
		CyclesSynced:   len(profile.Cycles),
	}, nil
}

// DownloadFromCloud overwrites the active profile's collections with the
// cloud blob. Absence of a cloud blob is a non-error outcome. Like
// UploadToCloud it refuses to run on an empty profile; a brand-new device
// restores through PerformFullSync instead.
func (e *Engine) DownloadFromCloud() (SyncResult, error) {
	if !e.syncMu.TryLock() {
		return SyncResult{Message: "sync already in progress"}, ErrSyncInProgress
	}
	defer e.syncMu.Unlock()

	if err := e.checkSyncPreconditions(); err != nil {
		return SyncResult{}, err
	}

	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return e.failSync(errors.Wrap(err, "getting active profile"))
	}
	if !profile.HasRecords() {
		return SyncResult{Message: "no data to sync"}, nil
	}

	e.setState(func(s *State) {
		s.Syncing = true
	})
	defer e.setState(func(s *State) {
		s.Syncing = false
	})

	result, err := e.remote.ImportBlob()
	if err != nil {
		return e.failSync(errors.Wrap(err, "fetching cloud data"))
	}
	if !result.HasData {
		return SyncResult{Message: "no cloud data yet"}, nil
	}

	synced, err := e.applyBlob(profile, result.Blob)
	if err != nil {
		return e.failSync(err)
	}

	if err := e.finishSync(profile.ID); err != nil {
		return e.failSync(err)
	}

	return SyncResult{
		Success:        true,
		ProfilesSynced: 1,
		CyclesSynced:   len(synced.Cycles),
	}, nil
}

// AutoSync performs a throttled full sync. It is a no-op unless signed in,
// sync enabled, the backend reachable, and more than AutoSyncInterval elapsed
// since the last sync. All errors are swallowed; automatic sync failures are
// never surfaced to the user.
func (e *Engine) AutoSync() {
	state := e.State()
	if !state.SignedIn || !state.SyncEnabled {
		return
	}

	now := e.clock.Now().Unix()
	if state.LastSync != 0 && now-state.LastSync < int64(AutoSyncInterval/time.Second) {
		return
	}

	if !e.remote.CheckConnection() {
		return
	}

	if _, err := e.PerformFullSync(); err != nil {
		log.Debug("auto-sync failed: %v\n", err)
	}
}

// HandleProfileSwitch severs the current cloud link before a profile
// create/select/delete takes effect. A cloud identity signed in under one
// profile must never be reachable after the active profile changes. All
// errors are swallowed; the switch must proceed regardless.
func (e *Engine) HandleProfileSwitch() {
	state := e.State()
	if !state.SignedIn {
		return
	}

	if err := e.remote.SignOut(); err != nil {
		log.Debug("server-side sign-out on profile switch failed: %v\n", err)
	}
	e.remote.ClearSession()

	if err := e.store.DeleteSession(); err != nil {
		log.Debug("deleting session on profile switch failed: %v\n", err)
	}

	profileID, err := e.store.GetActiveProfileID()
	if err != nil {
		log.Debug("getting active profile on profile switch failed: %v\n", err)
	} else if profileID != "" {
		if err := e.store.DeleteSyncSettings(profileID); err != nil {
			log.Debug("deleting sync settings on profile switch failed: %v\n", err)
		}
	}

	e.setState(func(s *State) {
		*s = State{}
	})
}

// DeleteCloudAccount deletes the remote blob and account, clears the
// profile-scoped sync settings and turns the profile's sync preference off.
// The remote is the source of truth for whether the account still exists, so
// a failing local settings write is logged, not surfaced.
func (e *Engine) DeleteCloudAccount() error {
	state := e.State()
	if !state.SignedIn {
		return ErrNotSignedIn
	}
	if !e.remote.CheckConnection() {
		return ErrNoNetwork
	}

	if err := e.remote.DeleteAccount(); err != nil {
		e.setState(func(s *State) {
			s.Err = err
		})
		return errors.Wrap(err, "deleting cloud account")
	}

	if err := e.store.DeleteSession(); err != nil {
		log.Debug("deleting session after account deletion failed: %v\n", err)
	}

	profileID, err := e.store.GetActiveProfileID()
	if err != nil {
		log.Debug("getting active profile after account deletion failed: %v\n", err)
	} else if profileID != "" {
		if err := e.store.DeleteSyncSettings(profileID); err != nil {
			log.Debug("deleting sync settings after account deletion failed: %v\n", err)
		}

		profile, err := e.store.GetProfile(profileID)
		if err == nil {
			settings := profile.Settings
			settings.OnlineSync = false
			if _, err := e.store.UpdateProfile(profileID, store.ProfileUpdate{Settings: &settings}); err != nil {
				log.Debug("disabling sync preference after account deletion failed: %v\n", err)
			}
		} else {
			log.Debug("loading profile after account deletion failed: %v\n", err)
		}
	}

	e.setState(func(s *State) {
		*s = State{}
	})

	return nil
}

// GetLinkedCloudAccounts returns the usernames the active profile has ever
// linked, for display and management only
func (e *Engine) GetLinkedCloudAccounts() ([]string, error) {
	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return nil, errors.Wrap(err, "getting active profile")
	}

	accounts, err := e.store.GetLinkedAccounts(profile.ID)
	if err != nil {
		return nil, errors.Wrap(err, "getting linked accounts")
	}

	return accounts, nil
}

// HasDataToSync returns true if the active profile has at least one record
func (e *Engine) HasDataToSync() (bool, error) {
	profile, err := e.store.GetActiveProfile()
	if err != nil {
		return false, errors.Wrap(err, "getting active profile")
	}

	return profile.HasRecords(), nil
}

// Wait blocks until all scheduled background syncs have finished
func (e *Engine) Wait() {
	e.wg.Wait()
}

func (e *Engine) scheduleSync() {
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		if _, err := e.PerformFullSync(); err != nil {
			log.Debug("scheduled sync failed: %v\n", err)
		}
	}()
}

func (e *Engine) checkSyncPreconditions() error {
	if !e.State().SignedIn {
		return ErrNotSignedIn
	}
	if !e.remote.CheckConnection() {
		return ErrNoNetwork
	}

	return nil
}

// shouldProfileSync reports whether the given profile is linked to the
// signed-in identity. The policy is intentionally coarse: the active profile
// is considered linked whenever a session exists, because HandleProfileSwitch
// guarantees the session was established under this profile.
func (e *Engine) shouldProfileSync(p store.Profile) bool {
	return e.State().SignedIn
}

func (e *Engine) applyBlob(profile store.Profile, blob client.Blob) (store.Profile, error) {
	merged := e.strategy.Reconcile(profile, blob)

	updated, err := e.store.UpdateProfile(profile.ID, store.ProfileUpdate{
		Settings:    &merged.Settings,
		Cycles:      &merged.Cycles,
		Symptoms:    &merged.Symptoms,
		Notes:       &merged.Notes,
		Predictions: &merged.Predictions,
	})
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "applying cloud data")
	}

	return updated, nil
}

func (e *Engine) finishSync(profileID string) error {
	now := e.clock.Now().Unix()

	settings, err := e.store.GetSyncSettings(profileID)
	if err != nil {
		return errors.Wrap(err, "getting sync settings")
	}
	settings.LastSync = now
	if err := e.store.SaveSyncSettings(profileID, settings); err != nil {
		return errors.Wrap(err, "saving sync settings")
	}

	e.setState(func(s *State) {
		s.LastSync = now
		s.Err = nil
	})

	return nil
}

func (e *Engine) failSync(err error) (SyncResult, error) {
	e.setState(func(s *State) {
		s.Err = err
	})

	return SyncResult{Message: err.Error()}, err
}
