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

// Package output provides functions to print informations on the terminal
// in a consistent manner
package output

import (
	"fmt"
	"time"

	"github.com/cyra-app/cyra/pkg/cli/engine"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/store"
)

// ProfileList prints the given profiles, marking the active one
func ProfileList(profiles []store.Profile, activeID string) {
	for _, p := range profiles {
		marker := " "
		if p.ID == activeID {
			marker = "*"
		}

		name := p.Name
		if name == "" {
			name = "(unnamed)"
		}

		log.Plainf("%s %s  %s  %s\n", marker, p.Emoji, name, p.ID)
	}
}

// ProfileInfo prints a profile's details
func ProfileInfo(p store.Profile) {
	name := p.Name
	if name == "" {
		name = "(unnamed)"
	}

	log.Infof("profile: %s %s\n", p.Emoji, name)
	log.Infof("created at: %s\n", time.Unix(p.CreatedAt, 0).Format("Jan 2, 2006 3:04pm (MST)"))
	log.Infof("last active: %s\n", time.Unix(p.LastActive, 0).Format("Jan 2, 2006 3:04pm (MST)"))
	log.Infof("cycles: %d\n", len(p.Cycles))
	log.Infof("symptoms: %d\n", len(p.Symptoms))
	log.Infof("notes: %d\n", len(p.Notes))
}

// SyncState prints the sync state of the engine
func SyncState(state engine.State) {
	if !state.SignedIn {
		log.Info("not signed in\n")
		return
	}

	log.Infof("signed in as: %s\n", state.Username)
	if state.LastSync == 0 {
		log.Info("last sync: never\n")
	} else {
		log.Infof("last sync: %s\n", time.Unix(state.LastSync, 0).Format("Jan 2, 2006 3:04pm (MST)"))
	}
}

// SyncResult prints the outcome of a sync operation
func SyncResult(result engine.SyncResult) {
	if !result.Success {
		if result.Message != "" {
			log.Infof("%s\n", result.Message)
		}
		return
	}

	log.Success("synced\n")
	fmt.Printf("  profiles: %d\n", result.ProfilesSynced)
	fmt.Printf("  cycles: %d\n", result.CyclesSynced)
}
