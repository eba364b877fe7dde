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

// Package dirs resolves the base directories for user files
package dirs

import (
	"os"

	"github.com/pkg/errors"
)

// Base directories resolved at startup. Config, data and cache files each
// go under their own root so a user can relocate them independently.
var (
	// Home is the current user's home directory
	Home string
	// ConfigHome is the root for user-specific configuration
	ConfigHome string
	// DataHome is the root for user-specific data files
	DataHome string
	// CacheHome is the root for non-essential cached data
	CacheHome string
)

func init() {
	Reload()
}

// Reload re-resolves the directory definitions from the environment
func Reload() {
	home, err := os.UserHomeDir()
	if err != nil {
		panic(errors.Wrap(err, "resolving home dir"))
	}

	Home = home
	ConfigHome = resolve(envConfigHome, defaultConfigHome(home))
	DataHome = resolve(envDataHome, defaultDataHome(home))
	CacheHome = resolve(envCacheHome, defaultCacheHome(home))
}

func resolve(envName, fallback string) string {
	if dir := os.Getenv(envName); dir != "" {
		return dir
	}

	return fallback
}
