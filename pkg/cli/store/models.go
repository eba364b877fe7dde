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

package store

// Profile is a local, anonymous persona identified by a unique emoji. It owns
// its own cycle data; cloud data is never merged across two different profile ids.
type Profile struct {
	ID          string       `json:"id"`
	Emoji       string       `json:"emoji"`
	Name        string       `json:"name"`
	CreatedAt   int64        `json:"createdAt"`
	LastActive  int64        `json:"lastActive"`
	Settings    Settings     `json:"settings"`
	Cycles      []Cycle      `json:"cycles"`
	Symptoms    []Symptom    `json:"symptoms"`
	Notes       []Note       `json:"notes"`
	Predictions []Prediction `json:"predictions"`
}

// Settings holds the structured preferences of a profile
type Settings struct {
	CycleLength      int  `json:"cycleLength"`
	PeriodLength     int  `json:"periodLength"`
	RemindersEnabled bool `json:"remindersEnabled"`
	OnlineSync       bool `json:"onlineSync"`
	DonationPrompt   bool `json:"donationPrompt"`
}

// Cycle is one recorded menstrual cycle
type Cycle struct {
	ID         string   `json:"id"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate,omitempty"`
	PeriodDays []string `json:"periodDays"`
}

// Symptom is one recorded symptom entry
type Symptom struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Intensity int    `json:"intensity"`
	Note      string `json:"note,omitempty"`
}

// Note is one free-form journal entry
type Note struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Body string `json:"body"`
}

// Prediction is one computed cycle prediction. Predictions are recomputed by
// the caller; the store only persists them alongside the rest of the profile.
type Prediction struct {
	ID         string  `json:"id"`
	Date       string  `json:"date"`
	Kind       string  `json:"kind"`
	Confidence float64 `json:"confidence"`
}

// SyncSettings is the per-profile persisted sync state. The runtime-only parts
// of the sync state (signed-in flag, in-flight flag, error) live in the engine.
type SyncSettings struct {
	Enabled  bool   `json:"enabled"`
	Username string `json:"username"`
	LastSync int64  `json:"lastSync"`
}

// DefaultSettings returns the settings a newly created profile starts with
func DefaultSettings() Settings {
	return Settings{
		CycleLength:      28,
		PeriodLength:     5,
		RemindersEnabled: false,
		OnlineSync:       false,
		DonationPrompt:   true,
	}
}

// ProfileUpdate describes a shallow partial update of a profile. Nil fields
// are left untouched.
type ProfileUpdate struct {
	Emoji       *string
	Name        *string
	Settings    *Settings
	Cycles      *[]Cycle
	Symptoms    *[]Symptom
	Notes       *[]Note
	Predictions *[]Prediction
}

// HasRecords returns true if the profile has at least one cycle, symptom or
// note. Predictions are derived data and do not count.
func (p Profile) HasRecords() bool {
	return len(p.Cycles) > 0 || len(p.Symptoms) > 0 || len(p.Notes) > 0
}
