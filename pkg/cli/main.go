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

package main

import (
	"os"
	"strings"

	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/ui"
	"github.com/cyra-app/cyra/pkg/cli/validate"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	// commands
	"github.com/cyra-app/cyra/pkg/cli/cmd/account"
	"github.com/cyra-app/cyra/pkg/cli/cmd/login"
	"github.com/cyra-app/cyra/pkg/cli/cmd/logout"
	"github.com/cyra-app/cyra/pkg/cli/cmd/profile"
	"github.com/cyra-app/cyra/pkg/cli/cmd/register"
	"github.com/cyra-app/cyra/pkg/cli/cmd/root"
	"github.com/cyra-app/cyra/pkg/cli/cmd/show"
	"github.com/cyra-app/cyra/pkg/cli/cmd/sync"
	"github.com/cyra-app/cyra/pkg/cli/cmd/track"
	"github.com/cyra-app/cyra/pkg/cli/cmd/version"
)

// apiEndpoint, apiKey and versionTag are populated during link time
var apiEndpoint string
var apiKey string
var versionTag = "master"

// parseDBPath extracts --dbPath flag value from command line arguments
// regardless of where it appears (before or after subcommand).
// Returns empty string if not found.
func parseDBPath(args []string) string {
	for i, arg := range args {
		if strings.HasPrefix(arg, "--dbPath=") {
			return strings.TrimPrefix(arg, "--dbPath=")
		}
		if arg == "--dbPath" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// newRootRun offers to create a starter profile on the very first launch.
// Afterwards a bare invocation prints help.
func newRootRun(ctx context.CyraCtx) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		first, err := svc.Store.IsFirstLaunch()
		if err != nil {
			return errors.Wrap(err, "checking first launch")
		}
		if !first {
			return cmd.Help()
		}

		log.Info("welcome to cyra\n")

		ok, err := ui.Confirm("create your first profile?", true)
		if err != nil {
			return errors.Wrap(err, "getting confirmation")
		}
		if err := svc.Store.MarkLaunched(); err != nil {
			return errors.Wrap(err, "clearing first launch flag")
		}
		if !ok {
			log.Plain("you can create one later with `cyra profile new <emoji>`\n")
			return nil
		}

		var emoji, name string
		if err := ui.PromptInput("emoji for the profile", &emoji); err != nil {
			return errors.Wrap(err, "getting emoji")
		}
		if err := validate.ProfileEmoji(emoji); err != nil {
			return err
		}
		if err := ui.PromptInput("name (optional)", &name); err != nil {
			return errors.Wrap(err, "getting name")
		}

		p, err := svc.Manager.Create(emoji, name, true)
		if err != nil {
			return errors.Wrap(err, "creating profile")
		}

		log.Successf("created profile %s\n", p.Emoji)

		return nil
	}
}

func main() {
	// Parse --dbPath early because it can appear after the subcommand
	// (e.g., "cyra sync --dbPath=./custom.db") and root.ParseFlags only
	// parses flags before the subcommand.
	dbPath := parseDBPath(os.Args[1:])

	ctx, err := infra.Init(versionTag, apiEndpoint, apiKey, dbPath)
	if err != nil {
		panic(errors.Wrap(err, "initializing context"))
	}
	defer ctx.DB.Close()

	root.SetRunE(newRootRun(*ctx))
	root.Register(profile.NewCmd(*ctx))
	root.Register(track.NewCmd(*ctx))
	root.Register(show.NewCmd(*ctx))
	root.Register(register.NewCmd(*ctx))
	root.Register(login.NewCmd(*ctx))
	root.Register(logout.NewCmd(*ctx))
	root.Register(sync.NewCmd(*ctx))
	root.Register(account.NewCmd(*ctx))
	root.Register(version.NewCmd(*ctx))

	if err := root.Execute(); err != nil {
		log.Errorf("%s\n", err.Error())
		os.Exit(1)
	}
}
