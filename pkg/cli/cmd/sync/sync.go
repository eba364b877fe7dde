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

package sync

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/engine"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/output"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var uploadFlag bool
var downloadFlag bool

var example = `
  * Reconcile the active profile with the cloud
  cyra sync

  * Push the local data to the cloud
  cyra sync --upload

  * Pull the cloud data, overwriting local collections
  cyra sync --download`

// NewCmd returns a new sync command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sync",
		Aliases: []string{"s"},
		Short:   "Sync the active profile with the cloud",
		Example: example,
		RunE:    newRun(ctx),
	}

	f := cmd.Flags()
	f.BoolVar(&uploadFlag, "upload", false, "push the local data to the cloud without fetching first")
	f.BoolVar(&downloadFlag, "download", false, "pull the cloud data, overwriting local collections")

	return cmd
}

func newRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		if uploadFlag && downloadFlag {
			return errors.New("--upload and --download are mutually exclusive")
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		var result engine.SyncResult
		switch {
		case uploadFlag:
			result, err = svc.Engine.UploadToCloud()
		case downloadFlag:
			result, err = svc.Engine.DownloadFromCloud()
		default:
			result, err = svc.Engine.PerformFullSync()
		}
		if err != nil {
			if errors.Cause(err) == engine.ErrNotSignedIn {
				return errors.New("not signed in. run `cyra login` first")
			}
			if errors.Cause(err) == engine.ErrNoNetwork {
				return errors.New("the server is not reachable")
			}
			return errors.Wrap(err, "syncing")
		}

		output.SyncResult(result)

		return nil
	}
}
