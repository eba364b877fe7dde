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

package show

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/output"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new show command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the active profile and its sync status",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := svc.Store.GetActiveProfile()
		if err != nil {
			if errors.Cause(err) == store.ErrNoActiveProfile {
				log.Info("no active profile. create one with `cyra profile new <emoji>`\n")
				return nil
			}
			return errors.Wrap(err, "getting active profile")
		}

		output.ProfileInfo(profile)
		output.SyncState(svc.Engine.State())

		return nil
	}
}
