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

package login

import (
	"github.com/cyra-app/cyra/pkg/cli/client"
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/ui"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns a new login command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Sign in to a cloud account",
		RunE:  newRun(ctx),
	}
}

// Do prompts for credentials and signs in. It is shared with other commands
// that need an authenticated session.
func Do(svc infra.Services) error {
	var username string
	if err := ui.PromptInput("username", &username); err != nil {
		return errors.Wrap(err, "getting username")
	}
	if username == "" {
		return errors.New("empty username")
	}

	var password string
	if err := ui.PromptPassword("password", &password); err != nil {
		return errors.Wrap(err, "getting password")
	}
	if password == "" {
		return errors.New("empty password")
	}

	if err := svc.Engine.SignIn(username, password); err != nil {
		if errors.Cause(err) == client.ErrInvalidCredentials {
			return errors.New("wrong username or password")
		}
		return errors.Wrap(err, "signing in")
	}
	svc.Engine.Wait()

	log.Successf("signed in as %s\n", username)

	return nil
}

func newRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		if svc.Engine.State().SignedIn {
			log.Infof("already signed in as %s\n", svc.Engine.State().Username)
			return nil
		}

		return Do(svc)
	}
}
