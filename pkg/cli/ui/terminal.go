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

// Package ui reads user input from the terminal
package ui

import (
	"bufio"
	"fmt"
	"os"
	"syscall"

	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/prompt"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// PromptInput asks for one line of input and stores it in dest
func PromptInput(message string, dest *string) error {
	log.Askf(message, false)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return errors.Wrap(err, "reading stdin")
		}
		return errors.New("unexpected end of input")
	}

	*dest = scanner.Text()

	return nil
}

// PromptPassword asks for a password and stores it in dest. The input is
// not echoed on the terminal.
func PromptPassword(message string, dest *string) error {
	log.Askf(message, true)

	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return errors.Wrap(err, "reading password")
	}

	*dest = string(raw)

	return nil
}

// Confirm asks a yes/no question and returns the user's choice
func Confirm(question string, optimistic bool) (bool, error) {
	log.Askf(prompt.FormatQuestion(question, optimistic), false)

	confirmed, err := prompt.ReadYesNo(os.Stdin, optimistic)
	if err != nil {
		return false, errors.Wrap(err, "reading answer")
	}

	return confirmed, nil
}
