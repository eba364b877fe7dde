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

// Package track provides commands for recording cycle data on the active
// profile
package track

import (
	"github.com/cyra-app/cyra/pkg/cli/context"
	"github.com/cyra-app/cyra/pkg/cli/infra"
	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/cyra-app/cyra/pkg/cli/utils"
	"github.com/cyra-app/cyra/pkg/cli/validate"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var endFlag string
var intensityFlag int
var noteFlag string

var example = `
 * Record the start of a period
 cyra track period 2024-01-01

 * Record a period with a known end date
 cyra track period 2024-01-01 --end 2024-01-05

 * Record a symptom
 cyra track symptom 2024-01-02 cramps --intensity 3

 * Record a journal note
 cyra track note 2024-01-02 "slept badly"`

// NewCmd returns a new track command
func NewCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "track",
		Short:   "Record cycle data on the active profile",
		Example: example,
	}

	cmd.AddCommand(newPeriodCmd(ctx))
	cmd.AddCommand(newSymptomCmd(ctx))
	cmd.AddCommand(newNoteCmd(ctx))

	return cmd
}

func newPeriodCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period <start-date>",
		Short: "Record a period",
		Args:  cobra.ExactArgs(1),
		RunE:  newPeriodRun(ctx),
	}

	cmd.Flags().StringVar(&endFlag, "end", "", "the end date of the period")

	return cmd
}

func newPeriodRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		startDate := args[0]
		if err := validate.Date(startDate); err != nil {
			return errors.Wrap(err, "invalid start date")
		}
		if endFlag != "" {
			if err := validate.Date(endFlag); err != nil {
				return errors.Wrap(err, "invalid end date")
			}
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := svc.Store.GetActiveProfile()
		if err != nil {
			return errors.Wrap(err, "getting active profile")
		}

		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.Wrap(err, "generating id")
		}

		cycles := append(profile.Cycles, store.Cycle{
			ID:         id,
			StartDate:  startDate,
			EndDate:    endFlag,
			PeriodDays: []string{startDate},
		})
		if _, err := svc.Store.UpdateProfile(profile.ID, store.ProfileUpdate{Cycles: &cycles}); err != nil {
			return errors.Wrap(err, "saving cycle")
		}

		log.Successf("recorded period starting %s\n", startDate)

		svc.Engine.AutoSync()

		return nil
	}
}

func newSymptomCmd(ctx context.CyraCtx) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symptom <date> <type>",
		Short: "Record a symptom",
		Args:  cobra.ExactArgs(2),
		RunE:  newSymptomRun(ctx),
	}

	f := cmd.Flags()
	f.IntVar(&intensityFlag, "intensity", 1, "the intensity of the symptom from 1 to 5")
	f.StringVar(&noteFlag, "note", "", "an optional note on the symptom")

	return cmd
}

func newSymptomRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		date := args[0]
		if err := validate.Date(date); err != nil {
			return errors.Wrap(err, "invalid date")
		}
		if intensityFlag < 1 || intensityFlag > 5 {
			return errors.New("intensity must be between 1 and 5")
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := svc.Store.GetActiveProfile()
		if err != nil {
			return errors.Wrap(err, "getting active profile")
		}

		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.Wrap(err, "generating id")
		}

		symptoms := append(profile.Symptoms, store.Symptom{
			ID:        id,
			Date:      date,
			Type:      args[1],
			Intensity: intensityFlag,
			Note:      noteFlag,
		})
		if _, err := svc.Store.UpdateProfile(profile.ID, store.ProfileUpdate{Symptoms: &symptoms}); err != nil {
			return errors.Wrap(err, "saving symptom")
		}

		log.Successf("recorded symptom %s on %s\n", args[1], date)

		svc.Engine.AutoSync()

		return nil
	}
}

func newNoteCmd(ctx context.CyraCtx) *cobra.Command {
	return &cobra.Command{
		Use:   "note <date> <body>",
		Short: "Record a journal note",
		Args:  cobra.ExactArgs(2),
		RunE:  newNoteRun(ctx),
	}
}

func newNoteRun(ctx context.CyraCtx) infra.RunEFunc {
	return func(cmd *cobra.Command, args []string) error {
		date := args[0]
		if err := validate.Date(date); err != nil {
			return errors.Wrap(err, "invalid date")
		}
		body := args[1]
		if body == "" {
			return errors.New("empty note body")
		}

		svc, err := infra.NewServices(&ctx)
		if err != nil {
			return errors.Wrap(err, "initializing services")
		}

		profile, err := svc.Store.GetActiveProfile()
		if err != nil {
			return errors.Wrap(err, "getting active profile")
		}

		id, err := utils.GenerateUUID()
		if err != nil {
			return errors.Wrap(err, "generating id")
		}

		notes := append(profile.Notes, store.Note{
			ID:   id,
			Date: date,
			Body: body,
		})
		if _, err := svc.Store.UpdateProfile(profile.ID, store.ProfileUpdate{Notes: &notes}); err != nil {
			return errors.Wrap(err, "saving note")
		}

		log.Successf("recorded note on %s\n", date)

		svc.Engine.AutoSync()

		return nil
	}
}
