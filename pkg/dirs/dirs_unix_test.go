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

//go:build linux || darwin || freebsd

package dirs

import (
	"path/filepath"
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
)

func TestInitDirsDefault(t *testing.T) {
	t.Setenv(envConfigHome, "")
	t.Setenv(envDataHome, "")
	t.Setenv(envCacheHome, "")

	Reload()

	assert.Equal(t, ConfigHome, filepath.Join(Home, ".config"), "ConfigHome mismatch")
	assert.Equal(t, DataHome, filepath.Join(Home, ".local/share"), "DataHome mismatch")
	assert.Equal(t, CacheHome, filepath.Join(Home, ".cache"), "CacheHome mismatch")
}

func TestInitDirsXDGOverride(t *testing.T) {
	t.Setenv(envConfigHome, "/tmp/config")
	t.Setenv(envDataHome, "/tmp/data")
	t.Setenv(envCacheHome, "/tmp/cache")

	Reload()
	defer Reload()

	assert.Equal(t, ConfigHome, "/tmp/config", "ConfigHome mismatch")
	assert.Equal(t, DataHome, "/tmp/data", "DataHome mismatch")
	assert.Equal(t, CacheHome, "/tmp/cache", "CacheHome mismatch")
}
