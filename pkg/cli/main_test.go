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

package main

import (
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
)

func TestParseDBPath(t *testing.T) {
	testCases := []struct {
		args     []string
		expected string
	}{
		{args: []string{"sync", "--dbPath=/tmp/test.db"}, expected: "/tmp/test.db"},
		{args: []string{"sync", "--dbPath", "/tmp/test.db"}, expected: "/tmp/test.db"},
		{args: []string{"--dbPath=/tmp/test.db", "sync"}, expected: "/tmp/test.db"},
		{args: []string{"sync"}, expected: ""},
		{args: []string{"sync", "--dbPath"}, expected: ""},
		{args: []string{}, expected: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, parseDBPath(tc.args), tc.expected, "path mismatch")
		})
	}
}
