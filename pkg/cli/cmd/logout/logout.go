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

package logout

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new logout command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out of the cloud account",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		if !svc.Engine.State().SignedIn {
			log.Info("not signed in\n")
			return nil
		}

		if err := svc.Engine.SignOut(); err != nil {
			return errors.Wrap(err, "signing out")
		}

		log.Success("signed out\n")

		return nil
	}
}
