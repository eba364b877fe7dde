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

package client

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/cyra-app/cyra/pkg/cli/log"
	"github.com/cyra-app/cyra/pkg/cli/store"
	"github.com/pkg/errors"
)

// Blob is the remote-side representation of one profile's full dataset. There
// is exactly one blob per authenticated identity, addressed by the remote
// user id, never by local profile id.
type Blob struct {
	Cycles      []store.Cycle      `json:"cycles"`
	Symptoms    []store.Symptom    `json:"symptoms"`
	Notes       []store.Note       `json:"notes"`
	Predictions []store.Prediction `json:"predictions"`
	Settings    store.Settings     `json:"settings"`
	LastUpdated int64              `json:"lastUpdated"`
}

// ImportResult is the outcome of fetching the remote blob. Absence of a blob
// is a normal "no data yet" outcome, not an error.
type ImportResult struct {
	HasData bool
	Blob    Blob
}

// blobEnvelope is the inbound wire form of a blob. Collections are kept raw
// so that a corrupted or partially-written remote row can be sanitized
// field by field instead of failing the whole import.
type blobEnvelope struct {
	Cycles      json.RawMessage `json:"cycles"`
	Symptoms    json.RawMessage `json:"symptoms"`
	Notes       json.RawMessage `json:"notes"`
	Predictions json.RawMessage `json:"predictions"`
	Settings    json.RawMessage `json:"settings"`
	LastUpdated int64           `json:"lastUpdated"`
}

// rawElements decodes a collection field into its raw elements. A missing or
// non-array field yields an empty collection.
func rawElements(raw json.RawMessage, field string) []json.RawMessage {
	if len(raw) == 0 {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Debug("sanitizing %s: not an array, dropping\n", field)
		return nil
	}

	return items
}

func sanitizeCycles(raw json.RawMessage) []store.Cycle {
	items := rawElements(raw, "cycles")
	ret := make([]store.Cycle, 0, len(items))
	for _, item := range items {
		var c store.Cycle
		if err := json.Unmarshal(item, &c); err != nil {
			log.Debug("sanitizing cycles: dropping malformed record: %v\n", err)
			continue
		}
		if c.ID == "" {
			log.Debug("sanitizing cycles: dropping record without id\n")
			continue
		}
		ret = append(ret, c)
	}

	return ret
}

func sanitizeSymptoms(raw json.RawMessage) []store.Symptom {
	items := rawElements(raw, "symptoms")
	ret := make([]store.Symptom, 0, len(items))
	for _, item := range items {
		var s store.Symptom
		if err := json.Unmarshal(item, &s); err != nil {
			log.Debug("sanitizing symptoms: dropping malformed record: %v\n", err)
			continue
		}
		if s.ID == "" {
			log.Debug("sanitizing symptoms: dropping record without id\n")
			continue
		}
		ret = append(ret, s)
	}

	return ret
}

func sanitizeNotes(raw json.RawMessage) []store.Note {
	items := rawElements(raw, "notes")
	ret := make([]store.Note, 0, len(items))
	for _, item := range items {
		var n store.Note
		if err := json.Unmarshal(item, &n); err != nil {
			log.Debug("sanitizing notes: dropping malformed record: %v\n", err)
			continue
		}
		if n.ID == "" {
			log.Debug("sanitizing notes: dropping record without id\n")
			continue
		}
		ret = append(ret, n)
	}

	return ret
}

func sanitizePredictions(raw json.RawMessage) []store.Prediction {
	items := rawElements(raw, "predictions")
	ret := make([]store.Prediction, 0, len(items))
	for _, item := range items {
		var p store.Prediction
		if err := json.Unmarshal(item, &p); err != nil {
			log.Debug("sanitizing predictions: dropping malformed record: %v\n", err)
			continue
		}
		if p.ID == "" {
			log.Debug("sanitizing predictions: dropping record without id\n")
			continue
		}
		ret = append(ret, p)
	}

	return ret
}

func sanitizeSettings(raw json.RawMessage) store.Settings {
	if len(raw) == 0 {
		return store.DefaultSettings()
	}

	var s store.Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		log.Debug("sanitizing settings: not an object, using defaults\n")
		return store.DefaultSettings()
	}

	return s
}

// sanitizeEnvelope converts an inbound envelope into a validated blob
func sanitizeEnvelope(env blobEnvelope) Blob {
	return Blob{
		Cycles:      sanitizeCycles(env.Cycles),
		Symptoms:    sanitizeSymptoms(env.Symptoms),
		Notes:       sanitizeNotes(env.Notes),
		Predictions: sanitizePredictions(env.Predictions),
		Settings:    sanitizeSettings(env.Settings),
		LastUpdated: env.LastUpdated,
	}
}

// sanitizeOutbound validates every collection of an outbound blob so that a
// single malformed record never aborts the whole export
func sanitizeOutbound(blob Blob) Blob {
	cycles := make([]store.Cycle, 0, len(blob.Cycles))
	for _, c := range blob.Cycles {
		if c.ID == "" {
			log.Debug("export: dropping cycle record without id\n")
			continue
		}
		cycles = append(cycles, c)
	}

	symptoms := make([]store.Symptom, 0, len(blob.Symptoms))
	for _, s := range blob.Symptoms {
		if s.ID == "" {
			log.Debug("export: dropping symptom record without id\n")
			continue
		}
		symptoms = append(symptoms, s)
	}

	notes := make([]store.Note, 0, len(blob.Notes))
	for _, n := range blob.Notes {
		if n.ID == "" {
			log.Debug("export: dropping note record without id\n")
			continue
		}
		notes = append(notes, n)
	}

	predictions := make([]store.Prediction, 0, len(blob.Predictions))
	for _, p := range blob.Predictions {
		if p.ID == "" {
			log.Debug("export: dropping prediction record without id\n")
			continue
		}
		predictions = append(predictions, p)
	}

	blob.Cycles = cycles
	blob.Symptoms = symptoms
	blob.Notes = notes
	blob.Predictions = predictions

	return blob
}

// ExportBlob upserts the blob row keyed by the authenticated identity
func (c *Client) ExportBlob(blob Blob) error {
	b, err := json.Marshal(sanitizeOutbound(blob))
	if err != nil {
		return errors.Wrapf(ErrExport, "marshaling blob: %s", err)
	}

	if _, err := c.doAuthorizedReq("PUT", "/v1/blob", string(b)); err != nil {
		if errors.Cause(err) == ErrNotSignedIn || errors.Cause(err) == ErrNotConfigured {
			return err
		}
		return errors.Wrapf(ErrExport, "putting blob: %s", err)
	}

	return nil
}

// ImportBlob fetches and sanitizes the blob row of the authenticated
// identity. A missing row reports HasData false.
func (c *Client) ImportBlob() (ImportResult, error) {
	res, err := c.doAuthorizedReq("GET", "/v1/blob", "")
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return ImportResult{HasData: false}, nil
		}
		return ImportResult{}, errors.Wrap(err, "fetching blob")
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return ImportResult{}, errors.Wrap(err, "reading the response body")
	}

	var env blobEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return ImportResult{}, errors.Wrapf(ErrRestore, "unmarshalling the payload: %s", err)
	}

	return ImportResult{HasData: true, Blob: sanitizeEnvelope(env)}, nil
}
