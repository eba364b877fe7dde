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

// Package consts provides definitions of constants
package consts

import "fmt"

var (
	// CyraDirName is the name of the directory containing cyra files
	CyraDirName = "cyra"
	// CyraDBFileName is a filename for the Cyra SQLite database
	CyraDBFileName = "cyra.db"
	// ConfigFilename is the name of the config file
	ConfigFilename = "cyrarc"
	// EnvFilename is the name of the optional env file holding backend
	// credentials that override the config file
	EnvFilename = ".env"

	// PlaceholderAPIEndpoint is the endpoint value shipped in a fresh config file
	PlaceholderAPIEndpoint = "https://YOUR_PROJECT.cyra.app/api"
	// PlaceholderAPIKey is the api key value shipped in a fresh config file
	PlaceholderAPIKey = "YOUR_API_KEY"

	// SystemProfiles is the key for the full profile list in the system table
	SystemProfiles = "profiles"
	// SystemActiveProfile is the key for the active profile pointer in the system table
	SystemActiveProfile = "active_profile"
	// SystemFirstLaunch is the key for the first launch flag in the system table
	SystemFirstLaunch = "first_launch"
	// SystemSessionKey is the session key
	SystemSessionKey = "session_token"
	// SystemSessionKeyExpiry is the timestamp at which the session key will expire
	SystemSessionKeyExpiry = "session_token_expiry"
)

// SyncSettingsKey returns the system table key holding the persisted sync
// settings of the profile with the given id
func SyncSettingsKey(profileID string) string {
	return fmt.Sprintf("sync_settings:%s", profileID)
}

// LinkedAccountsKey returns the system table key holding the list of cloud
// usernames the profile with the given id has ever linked
func LinkedAccountsKey(profileID string) string {
	return fmt.Sprintf("linked_accounts:%s", profileID)
}
