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

package infra

import (
	"fmt"
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
	"github.com/cyra-app/cyra/pkg/cli/config"
	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/cyra-app/cyra/pkg/cli/testutils"
	"github.com/cyra-app/cyra/pkg/cli/utils"
)

func newTestCtx(t *testing.T) context.CyraCtx {
	t.Helper()

	dir := t.TempDir()

	return context.CyraCtx{
		Paths: context.Paths{
			Home:   dir,
			Config: fmt.Sprintf("%s/config", dir),
			Data:   fmt.Sprintf("%s/data", dir),
			Cache:  fmt.Sprintf("%s/cache", dir),
		},
		DB: database.InitTestMemoryDB(t),
	}
}

func TestGetDBPath(t *testing.T) {
	paths := context.Paths{Data: "/home/user/.local/share"}

	got := getDBPath(paths, "")
	assert.Equal(t, got, "/home/user/.local/share/cyra/cyra.db", "default path mismatch")

	got = getDBPath(paths, "/tmp/custom.db")
	assert.Equal(t, got, "/tmp/custom.db", "custom path mismatch")
}

func TestInitFiles(t *testing.T) {
	ctx := newTestCtx(t)

	if err := initFiles(ctx, "https://api.test.cyra.app/api", "test-key"); err != nil {
		t.Fatalf("initializing files: %v", err)
	}

	ok, err := utils.FileExists(config.GetPath(ctx))
	if err != nil {
		t.Fatalf("checking config file: %v", err)
	}
	assert.Equal(t, ok, true, "config file should exist")

	cf, err := config.Read(ctx)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	assert.Equal(t, cf.APIEndpoint, "https://api.test.cyra.app/api", "endpoint mismatch")
	assert.Equal(t, cf.APIKey, "test-key", "api key mismatch")
}

func TestInitFilesDefaults(t *testing.T) {
	ctx := newTestCtx(t)

	if err := initFiles(ctx, "", ""); err != nil {
		t.Fatalf("initializing files: %v", err)
	}

	cf, err := config.Read(ctx)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	assert.Equal(t, cf.APIEndpoint, consts.PlaceholderAPIEndpoint, "endpoint mismatch")
	assert.Equal(t, cf.APIKey, consts.PlaceholderAPIKey, "api key mismatch")
}

func TestInitFilesKeepsExistingConfig(t *testing.T) {
	ctx := newTestCtx(t)

	if err := initFiles(ctx, "https://first.cyra.app/api", "first-key"); err != nil {
		t.Fatalf("initializing files: %v", err)
	}
	if err := initFiles(ctx, "https://second.cyra.app/api", "second-key"); err != nil {
		t.Fatalf("re-initializing files: %v", err)
	}

	cf, err := config.Read(ctx)
	if err != nil {
		t.Fatalf("reading config: %v", err)
	}
	assert.Equal(t, cf.APIEndpoint, "https://first.cyra.app/api", "existing config should be kept")
}

func TestSetupCtx(t *testing.T) {
	ctx := newTestCtx(t)

	if err := initFiles(ctx, "https://api.test.cyra.app/api", "test-key"); err != nil {
		t.Fatalf("initializing files: %v", err)
	}

	testutils.Login(t, &ctx)

	got, err := setupCtx(ctx)
	if err != nil {
		t.Fatalf("setting up context: %v", err)
	}

	assert.Equal(t, got.SessionKey, "someSessionKey", "session key mismatch")
	assert.Equal(t, got.SessionKeyExpiry, ctx.SessionKeyExpiry, "session expiry mismatch")
	assert.Equal(t, got.APIEndpoint, "https://api.test.cyra.app/api", "endpoint mismatch")
	assert.Equal(t, got.APIKey, "test-key", "api key mismatch")
	assert.NotEqual(t, got.Clock, nil, "clock should be set")
	assert.NotEqual(t, got.HTTPClient, nil, "http client should be set")
}

func TestInitSystem(t *testing.T) {
	ctx := newTestCtx(t)

	if err := database.InitSchema(ctx.DB); err != nil {
		t.Fatalf("initializing schema: %v", err)
	}

	if err := initSystem(ctx); err != nil {
		t.Fatalf("initializing system: %v", err)
	}

	var flag string
	if err := database.GetSystem(ctx.DB, consts.SystemFirstLaunch, &flag); err != nil {
		t.Fatalf("getting first launch flag: %v", err)
	}
	assert.Equal(t, flag, "true", "first launch flag mismatch")
}
