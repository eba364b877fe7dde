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

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cyra-app/cyra/pkg/assert"
)

func TestFileExists(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "some-file")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, err := FileExists(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, true, "existing file should be reported")

	ok, err = FileExists(filepath.Join(dir, "no-such-file"))
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, false, "missing file should not be reported")
}

func TestEnsureDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dir")

	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}

	ok, err := FileExists(path)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, ok, true, "directory should have been created")

	// running again on an existing directory is a noop
	if err := EnsureDir(path); err != nil {
		t.Fatal(err)
	}
}
