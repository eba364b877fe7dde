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

package register

import (
	"github.com/cyra-app/cyra/pkg/cli/client"
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/ui"
	"github.com/cyra-app/cyra/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new register command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "register",
		Short: "Create a cloud account and link it to the active profile",
		RunE:  newRun(ctx),
	}
}

func newRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		var username string
		if err := ui.PromptInput("username", &username); err != nil {
			return errors.Wrap(err, "getting username")
		}
		if err := validate.Username(username); err != nil {
			return errors.Wrap(err, "invalid username")
		}

		var password string
		if err := ui.PromptPassword("password", &password); err != nil {
			return errors.Wrap(err, "getting password")
		}
		if err := validate.Password(password); err != nil {
			return errors.Wrap(err, "invalid password")
		}

		var confirmation string
		if err := ui.PromptPassword("confirm password", &confirmation); err != nil {
			return errors.Wrap(err, "getting password confirmation")
		}
		if password != confirmation {
			return errors.New("passwords do not match")
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		if err := svc.Engine.CreateAccount(username, password); err != nil {
			if errors.Cause(err) == client.ErrUsernameTaken {
				return errors.New("the username is already taken")
			}
			return errors.Wrap(err, "creating account")
		}
		svc.Engine.Wait()

		log.Successf("registered and signed in as %s\n", username)

		return nil
	}
}
