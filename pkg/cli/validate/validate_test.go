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

package validate

import (
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
)

func TestProfileEmoji(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{input: "🦋", expected: nil},
		{input: "🤲🏽", expected: nil},
		{input: "", expected: ErrEmojiEmpty},
		{input: "butterfly", expected: ErrEmojiTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.EqualErr(t, ProfileEmoji(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestUsername(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{input: "alice", expected: nil},
		{input: "alice_99", expected: nil},
		{input: "al", expected: ErrUsernameInvalid},
		{input: "Alice", expected: ErrUsernameInvalid},
		{input: "alice@home", expected: ErrUsernameInvalid},
		{input: "", expected: ErrUsernameInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.EqualErr(t, Username(tc.input), tc.expected, "result mismatch")
		})
	}
}

func TestPassword(t *testing.T) {
	assert.EqualErr(t, Password("longenough"), nil, "valid password mismatch")
	assert.EqualErr(t, Password("short"), ErrPasswordTooShort, "short password mismatch")
}

func TestDate(t *testing.T) {
	testCases := []struct {
		input    string
		expected error
	}{
		{input: "2024-01-01", expected: nil},
		{input: "2024-13-01", expected: ErrDateInvalid},
		{input: "01/02/2024", expected: ErrDateInvalid},
		{input: "", expected: ErrDateInvalid},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.EqualErr(t, Date(tc.input), tc.expected, "result mismatch")
		})
	}
}
