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

// Package validate provides validation for user-supplied values
package validate

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
)

// ErrEmojiEmpty is an error for an empty profile emoji
var ErrEmojiEmpty = errors.New("emoji is empty")

// ErrEmojiTooLong is an error for a profile symbol longer than one character
var ErrEmojiTooLong = errors.New("emoji must be a single character")

// ErrUsernameInvalid is an error for a username that does not match the
// allowed pattern
var ErrUsernameInvalid = errors.New("username must be 3-30 characters of lowercase letters, digits or underscores")

// ErrPasswordTooShort is an error for a password shorter than the minimum
var ErrPasswordTooShort = errors.New("password must be at least 8 characters")

// ErrDateInvalid is an error for a date that is not in YYYY-MM-DD form
var ErrDateInvalid = errors.New("date must be in YYYY-MM-DD form")

var usernameRegexp = regexp.MustCompile(`^[a-z0-9_]{3,30}$`)

// ProfileEmoji validates a profile symbol
func ProfileEmoji(emoji string) error {
	runes := []rune(emoji)
	if len(runes) == 0 {
		return ErrEmojiEmpty
	}
	// grapheme clusters like skin-tone variants span multiple runes
	if len(runes) > 4 {
		return ErrEmojiTooLong
	}

	return nil
}

// Username validates a cloud account username
func Username(username string) error {
	if !usernameRegexp.MatchString(username) {
		return ErrUsernameInvalid
	}

	return nil
}

// Password validates a cloud account password
func Password(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}

	return nil
}

// Date validates a record date
func Date(date string) error {
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return ErrDateInvalid
	}

	return nil
}
