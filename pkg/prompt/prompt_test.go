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

package prompt

import (
	"strings"
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
)

func TestFormatQuestion(t *testing.T) {
	testCases := []struct {
		question   string
		optimistic bool
		expected   string
	}{
		{
			question:   "delete this profile",
			optimistic: false,
			expected:   "delete this profile (y/N)",
		},
		{
			question:   "proceed",
			optimistic: true,
			expected:   "proceed (Y/n)",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			got := FormatQuestion(tc.question, tc.optimistic)
			assert.Equal(t, got, tc.expected, "formatted question mismatch")
		})
	}
}

func TestReadYesNo(t *testing.T) {
	testCases := []struct {
		input      string
		optimistic bool
		expected   bool
	}{
		{input: "y\n", optimistic: false, expected: true},
		{input: "Y\n", optimistic: false, expected: true},
		{input: "yes\n", optimistic: false, expected: true},
		{input: "n\n", optimistic: false, expected: false},
		{input: "\n", optimistic: false, expected: false},
		{input: "\n", optimistic: true, expected: true},
		{input: "n\n", optimistic: true, expected: false},
		{input: "gibberish\n", optimistic: true, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			got, err := ReadYesNo(strings.NewReader(tc.input), tc.optimistic)
			if err != nil {
				t.Fatal(err)
			}

			assert.Equal(t, got, tc.expected, "confirmation mismatch")
		})
	}
}
