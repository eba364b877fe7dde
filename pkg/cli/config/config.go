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

// Package config provides the cyra configuration file
package config

import (
	"os"
	"path/filepath"

	"github.com/cyra-app/cyra/pkg/cli/consts"
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds the values persisted in the cyra config file. Runtime state
// such as the session lives in the database, not here.
type Config struct {
	APIEndpoint string `yaml:"apiEndpoint"`
	APIKey      string `yaml:"apiKey"`
}

// GetPath returns the path to the cyra config file
func GetPath(ctx context.CyraCtx) string {
	return filepath.Join(ctx.Paths.Config, consts.CyraDirName, consts.ConfigFilename)
}

// Read loads the config file
func Read(ctx context.CyraCtx) (Config, error) {
	var ret Config

	b, err := os.ReadFile(GetPath(ctx))
	if err != nil {
		return ret, errors.Wrap(err, "reading config file")
	}
	if err := yaml.Unmarshal(b, &ret); err != nil {
		return ret, errors.Wrap(err, "unmarshalling config")
	}

	return ret, nil
}

// Write replaces the config file with the given config
func Write(ctx context.CyraCtx, cf Config) error {
	b, err := yaml.Marshal(cf)
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}

	if err := os.WriteFile(GetPath(ctx), b, 0644); err != nil {
		return errors.Wrap(err, "writing config file")
	}

	return nil
}
