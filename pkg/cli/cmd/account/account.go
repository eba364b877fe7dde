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

// Package account provides commands for managing the linked cloud account
package account

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/engine"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new account command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the cloud account linked to the active profile",
	}

	cmd.AddCommand(newDeleteCmd(ctx))
	cmd.AddCommand(newLinkedCmd(ctx))

	return cmd
}

func newDeleteCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "delete",
		Short: "Delete the cloud account and its stored data",
		RunE:  newDeleteRun(ctx),
	}
}

func newDeleteRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		if !svc.Engine.State().SignedIn {
			return errors.New("not signed in. run `cyra login` first")
		}

		ok, err := ui.Confirm("delete the cloud account and all of its stored data?", false)
		if err != nil {
			return errors.Wrap(err, "getting confirmation")
		}
		if !ok {
			log.Info("aborted\n")
			return nil
		}

		if err := svc.Engine.DeleteCloudAccount(); err != nil {
			if errors.Cause(err) == engine.ErrNoNetwork {
				return errors.New("the server is not reachable")
			}
			return errors.Wrap(err, "deleting account")
		}

		log.Success("deleted the cloud account. local data is untouched\n")

		return nil
	}
}

func newLinkedCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "linked",
		Short: "List the cloud accounts the active profile has linked",
		RunE:  newLinkedRun(ctx),
	}
}

func newLinkedRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		accounts, err := svc.Engine.GetLinkedCloudAccounts()
		if err != nil {
			return errors.Wrap(err, "getting linked accounts")
		}
		if len(accounts) == 0 {
			log.Info("no linked accounts\n")
			return nil
		}

		for _, username := range accounts {
			log.Plainf("%s\n", username)
		}

		return nil
	}
}
