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

// Package profile provides commands for managing local profiles
package profile

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/output"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/cyra-app/cyra/pkg/cli/ui"
	"github.com/cyra-app/cyra/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var nameFlag string
var noActivateFlag bool

var example = `
 * Create a new profile and make it active
 cyra profile new 🦋

 * Create a named profile without switching to it
 cyra profile new 🌙 --name luna --no-activate

 * List profiles
 cyra profile ls

 * Switch the active profile
 cyra profile use 🌙

 * Remove a profile
 cyra profile rm 🦋`

// NewCmd returns a new profile command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profile",
		Short:   "Manage local profiles",
		Example: example,
	}

	cmd.AddCommand(newNewCmd(ctx))
	cmd.AddCommand(newLsCmd(ctx))
	cmd.AddCommand(newUseCmd(ctx))
	cmd.AddCommand(newRmCmd(ctx))
	cmd.AddCommand(newRenameCmd(ctx))

	return cmd
}

// findByEmoji resolves a profile by its emoji
func findByEmoji(s *store.Store, emoji string) (store.Profile, error) {
	profiles, err := s.GetProfiles()
	if err != nil {
		return store.Profile{}, errors.Wrap(err, "getting profiles")
	}

	for _, p := range profiles {
		if p.Emoji == emoji {
			return p, nil
		}
	}

	return store.Profile{}, store.ErrProfileNotFound
}

func newNewCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new <emoji>",
		Short: "Create a new profile",
		Args:  cobra.ExactArgs(1),
		RunE:  newNewRun(ctx),
	}

	f := cmd.Flags()
	f.StringVar(&nameFlag, "name", "", "an optional display name for the profile")
	f.BoolVar(&noActivateFlag, "no-activate", false, "do not switch to the new profile")

	return cmd
}

func newNewRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		emoji := args[0]
		if err := validate.ProfileEmoji(emoji); err != nil {
			return errors.Wrap(err, "invalid emoji")
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := svc.Manager.Create(emoji, nameFlag, !noActivateFlag)
		if err != nil {
			return errors.Wrap(err, "creating profile")
		}

		log.Successf("created profile %s\n", profile.Emoji)

		return nil
	}
}

func newLsCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List profiles",
		RunE:    newLsRun(ctx),
	}
}

func newLsRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profiles, err := svc.Store.GetProfiles()
		if err != nil {
			return errors.Wrap(err, "getting profiles")
		}
		if len(profiles) == 0 {
			log.Info("no profiles yet. create one with `cyra profile new <emoji>`\n")
			return nil
		}

		activeID, err := svc.Store.GetActiveProfileID()
		if err != nil {
			return errors.Wrap(err, "getting active profile")
		}

		output.ProfileList(profiles, activeID)

		return nil
	}
}

func newUseCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "use <emoji>",
		Short: "Switch the active profile",
		Args:  cobra.ExactArgs(1),
		RunE:  newUseRun(ctx),
	}
}

func newUseRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := findByEmoji(svc.Store, args[0])
		if err != nil {
			return errors.Wrap(err, "finding profile")
		}

		if svc.Engine.State().SignedIn {
			log.Warnf("switching profiles signs you out of the cloud account\n")
		}

		if err := svc.Manager.Select(profile.ID); err != nil {
			return errors.Wrap(err, "selecting profile")
		}

		log.Successf("now using %s\n", profile.Emoji)

		return nil
	}
}

func newRmCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <emoji>",
		Aliases: []string{"remove"},
		Short:   "Remove a profile and all of its data",
		Args:    cobra.ExactArgs(1),
		RunE:    newRmRun(ctx),
	}
}

func newRmRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := findByEmoji(svc.Store, args[0])
		if err != nil {
			return errors.Wrap(err, "finding profile")
		}

		ok, err := ui.Confirm("remove the profile and all of its local data?", false)
		if err != nil {
			return errors.Wrap(err, "getting confirmation")
		}
		if !ok {
			log.Info("aborted\n")
			return nil
		}

		if err := svc.Manager.Delete(profile.ID); err != nil {
			return errors.Wrap(err, "deleting profile")
		}

		log.Successf("removed profile %s\n", profile.Emoji)

		return nil
	}
}

func newRenameCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <emoji> <name>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE:  newRenameRun(ctx),
	}
}

func newRenameRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := findByEmoji(svc.Store, args[0])
		if err != nil {
			return errors.Wrap(err, "finding profile")
		}

		name := args[1]
		if _, err := svc.Manager.Update(profile.ID, store.ProfileUpdate{Name: &name}); err != nil {
			return errors.Wrap(err, "renaming profile")
		}

		log.Successf("renamed %s to %s\n", profile.Emoji, name)

		return nil
	}
}
