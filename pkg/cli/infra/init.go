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

// Package infra provides operations and definitions for the
// local infrastructure for Cyra
package infra

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/cyra-app/cyra/pkg/cli/client"
	"github.com/cyra-app/cyra/pkg/cli/config"
	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/database"
	"github.com/cyra-app/cyra/pkg/cli/engine"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/profiles"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/cyra-app/cyra/pkg/cli/utils"
	"github.com/cyra-app/cyra/pkg/clock"
	"github.com/cyra-app/cyra/pkg/dirs"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// RunEFunc is a function type of cyra commands
type RunEFunc func(*cobra.Command, []string) error

func getDBPath(paths context.Paths, customPath string) string {
	if customPath != "" {
		return customPath
	}

	return fmt.Sprintf("%s/%s/%s", paths.Data, consts.CyraDirName, consts.CyraDBFileName)
}

// newBaseCtx creates a minimal context with paths and database connection.
// This base context is used for file and database initialization before
// being enriched with config values by setupCtx.
func newBaseCtx(versionTag, customDBPath string) (context.CyraCtx, error) {
	paths := context.Paths{
		Home:   dirs.Home,
		Config: dirs.ConfigHome,
		Data:   dirs.DataHome,
		Cache:  dirs.CacheHome,
	}

	dbPath := getDBPath(paths, customDBPath)

	db, err := database.Open(dbPath)
	if err != nil {
		return context.CyraCtx{}, errors.Wrap(err, "connecting to db")
	}

	ctx := context.CyraCtx{
		Paths:   paths,
		Version: versionTag,
		DB:      db,
	}

	return ctx, nil
}

// Init initializes the Cyra environment and returns a new cyra context.
// apiEndpoint and apiKey are used when creating a new config file.
func Init(versionTag, apiEndpoint, apiKey, dbPath string) (*context.CyraCtx, error) {
	ctx, err := newBaseCtx(versionTag, dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "initializing a context")
	}

	if err := initFiles(ctx, apiEndpoint, apiKey); err != nil {
		return nil, errors.Wrap(err, "initializing files")
	}

	if err := database.InitSchema(ctx.DB); err != nil {
		return nil, errors.Wrap(err, "initializing database")
	}
	if err := initSystem(ctx); err != nil {
		return nil, errors.Wrap(err, "initializing system data")
	}

	ctx, err = setupCtx(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "setting up the context")
	}

	log.Debug("context: %+v\n", context.Redact(ctx))

	return &ctx, nil
}

// initFiles ensures the cyra directories and the config file exist
func initFiles(ctx context.CyraCtx, apiEndpoint, apiKey string) error {
	configDir := fmt.Sprintf("%s/%s", ctx.Paths.Config, consts.CyraDirName)
	dataDir := fmt.Sprintf("%s/%s", ctx.Paths.Data, consts.CyraDirName)

	if err := utils.EnsureDir(configDir); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := utils.EnsureDir(dataDir); err != nil {
		return errors.Wrap(err, "creating data directory")
	}

	configPath := config.GetPath(ctx)
	ok, err := utils.FileExists(configPath)
	if err != nil {
		return errors.Wrap(err, "checking config file")
	}
	if ok {
		return nil
	}

	if apiEndpoint == "" {
		apiEndpoint = consts.PlaceholderAPIEndpoint
	}
	if apiKey == "" {
		apiKey = consts.PlaceholderAPIKey
	}

	cf := config.Config{
		APIEndpoint: apiEndpoint,
		APIKey:      apiKey,
	}
	if err := config.Write(ctx, cf); err != nil {
		return errors.Wrap(err, "writing default config")
	}

	return nil
}

// initSystem inserts system data if missing
func initSystem(ctx context.CyraCtx) error {
	log.Debug("initializing the system\n")

	db := ctx.DB

	var count int
	if err := db.QueryRow("SELECT count(*) FROM system WHERE key = ?", consts.SystemFirstLaunch).Scan(&count); err != nil {
		return errors.Wrap(err, "counting first launch flag")
	}
	if count == 0 {
		if err := database.UpsertSystem(db, consts.SystemFirstLaunch, "true"); err != nil {
			return errors.Wrap(err, "initializing first launch flag")
		}
	}

	return nil
}

// setupCtx enriches the base context with values from the config file, the
// environment and the database. This is called after files and database have
// been initialized.
func setupCtx(ctx context.CyraCtx) (context.CyraCtx, error) {
	db := ctx.DB

	var sessionKey string
	var sessionKeyExpiry int64

	err := db.QueryRow("SELECT value FROM system WHERE key = ?", consts.SystemSessionKey).Scan(&sessionKey)
	if err != nil && err != sql.ErrNoRows {
		return ctx, errors.Wrap(err, "finding session key")
	}
	err = db.QueryRow("SELECT value FROM system WHERE key = ?", consts.SystemSessionKeyExpiry).Scan(&sessionKeyExpiry)
	if err != nil && err != sql.ErrNoRows {
		return ctx, errors.Wrap(err, "finding session key expiry")
	}

	cf, err := config.Read(ctx)
	if err != nil {
		return ctx, errors.Wrap(err, "reading config")
	}

	apiEndpoint, apiKey := applyEnvOverrides(ctx, cf.APIEndpoint, cf.APIKey)

	ret := context.CyraCtx{
		Paths:            ctx.Paths,
		Version:          ctx.Version,
		DB:               ctx.DB,
		SessionKey:       sessionKey,
		SessionKeyExpiry: sessionKeyExpiry,
		APIEndpoint:      apiEndpoint,
		APIKey:           apiKey,
		Clock:            clock.New(),
		HTTPClient:       client.NewRateLimitedHTTPClient(),
	}

	return ret, nil
}

// applyEnvOverrides lets a .env file in the config directory, or the process
// environment, override the backend connection values
func applyEnvOverrides(ctx context.CyraCtx, apiEndpoint, apiKey string) (string, string) {
	envPath := fmt.Sprintf("%s/%s/%s", ctx.Paths.Config, consts.CyraDirName, consts.EnvFilename)
	ok, err := utils.FileExists(envPath)
	if err != nil {
		log.Debug("checking env file: %v\n", err)
	}
	if ok {
		if err := godotenv.Load(envPath); err != nil {
			log.Debug("loading env file: %v\n", err)
		}
	}

	if v := os.Getenv("CYRA_API_ENDPOINT"); v != "" {
		apiEndpoint = v
	}
	if v := os.Getenv("CYRA_API_KEY"); v != "" {
		apiKey = v
	}

	return apiEndpoint, apiKey
}

// Services bundles the constructed application services
type Services struct {
	Store   *store.Store
	Client  *client.Client
	Engine  *engine.Engine
	Manager *profiles.Manager
}

// NewServices constructs the store, the remote client, the sync engine and
// the profile lifecycle manager from a context. The engine is initialized
// from the persisted state.
func NewServices(ctx *context.CyraCtx) (Services, error) {
	s := store.New(ctx.DB, ctx.Clock)

	c := client.New(client.Config{
		Endpoint:   ctx.APIEndpoint,
		APIKey:     ctx.APIKey,
		SessionKey: ctx.SessionKey,
		Version:    ctx.Version,
		HTTPClient: ctx.HTTPClient,
	})

	e := engine.New(s, c, ctx.Clock)
	if err := e.Init(); err != nil {
		return Services{}, errors.Wrap(err, "initializing sync engine")
	}

	m := profiles.NewManager(s, e)

	return Services{Store: s, Client: c, Engine: e, Manager: m}, nil
}
