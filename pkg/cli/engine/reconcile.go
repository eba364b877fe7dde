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

package engine

import (
	"github.com/cyra-app/cyra/pkg/cli/client"
	"github.com/cyra-app/cyra/pkg/cli/store"
)

// ReconciliationStrategy decides how a cloud blob is applied to a local
// profile during a download. Strategies must not mutate their inputs.
type ReconciliationStrategy interface {
	Reconcile(local store.Profile, remote client.Blob) store.Profile
}

// OverwriteStrategy replaces every mutable collection of the local profile
// with the remote values. Only the local identity fields survive: id, emoji,
// name and createdAt. The remote blob is addressed by the cloud identity, not
// by the local profile id, so nothing identity-related is trusted from it.
type OverwriteStrategy struct{}

func (OverwriteStrategy) Reconcile(local store.Profile, remote client.Blob) store.Profile {
	result := local
	result.Cycles = remote.Cycles
	result.Symptoms = remote.Symptoms
	result.Notes = remote.Notes
	result.Predictions = remote.Predictions
	result.Settings = remote.Settings

	return result
}

// blobFromProfile packages a profile's syncable dataset for upload
func blobFromProfile(p store.Profile, now int64) client.Blob {
	return client.Blob{
		Cycles:      p.Cycles,
		Symptoms:    p.Symptoms,
		Notes:       p.Notes,
		Predictions: p.Predictions,
		Settings:    p.Settings,
		LastUpdated: now,
	}
}
