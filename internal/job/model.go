// Shoal is a Redfish aggregator service.
// Copyright (C) 2025 Matthew Burns
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package job holds the bisect job broker's core: the record schema, the
// in-memory store, the JSON-patch engine, and the filter query engine. It
// has no dependency on net/http; the HTTP surface in internal/api is a thin
// adapter over the types and functions defined here.
package job

import "encoding/json"

// Type is the enumerated job kind. Only "bisect" exists today; the field
// is kept as its own type so the schema's enum check has one place to grow.
type Type string

const TypeBisect Type = "bisect"

func (t Type) valid() bool { return t == TypeBisect }

// Platform is the enumerated OS tag a job may target.
type Platform string

const (
	PlatformDarwin Platform = "darwin"
	PlatformLinux  Platform = "linux"
	PlatformWin32  Platform = "win32"
)

func (p Platform) valid() bool {
	switch p {
	case PlatformDarwin, PlatformLinux, PlatformWin32:
		return true
	default:
		return false
	}
}

// Attribute names of the job record. The readonly subset (readonlyAttrs
// below) can never appear as a patch target.
const (
	attrID          = "id"
	attrType        = "type"
	attrGist        = "gist"
	attrTimeCreated = "time_created"
	attrTimeStarted = "time_started"
	attrTimeDone    = "time_done"
	attrPlatform    = "platform"
	attrBisectRange = "bisect_range"
	attrResultBis   = "result_bisect"
	attrBotData     = "bot_client_data"
	attrError       = "error"
	attrTags        = "tags"
	attrUser        = "user"
)

var readonlyAttrs = map[string]bool{
	attrID:          true,
	attrType:        true,
	attrTimeCreated: true,
}

// declaredAttrs is the full set of attribute names a create/patch payload
// may mention. Anything else is rejected per invariant 4.
var declaredAttrs = map[string]bool{
	attrID:          true,
	attrType:        true,
	attrGist:        true,
	attrTimeCreated: true,
	attrTimeStarted: true,
	attrTimeDone:    true,
	attrPlatform:    true,
	attrBisectRange: true,
	attrResultBis:   true,
	attrBotData:     true,
	attrError:       true,
	attrTags:        true,
	attrUser:        true,
}

// Record is a job as stored and projected to JSON. Pointer fields are
// absent from the wire format when nil (via omitempty); BisectRange and
// ResultBisect are nil until set. BotClientData is arbitrary JSON and is
// never interpreted by the store beyond the query engine's path walk.
type Record struct {
	ID            string          `json:"id"`
	Type          Type            `json:"type"`
	Gist          string          `json:"gist"`
	TimeCreated   int64           `json:"time_created"`
	TimeStarted   *int64          `json:"time_started,omitempty"`
	TimeDone      *int64          `json:"time_done,omitempty"`
	Platform      Platform        `json:"platform,omitempty"`
	BisectRange   []string        `json:"bisect_range,omitempty"`
	ResultBisect  []string        `json:"result_bisect,omitempty"`
	BotClientData json.RawMessage `json:"bot_client_data,omitempty"`
	Error         string          `json:"error,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	User          string          `json:"user,omitempty"`
}

// clone returns a deep copy so callers can never mutate store-owned state
// through a value returned from Get.
func (r Record) clone() Record {
	out := r
	out.BisectRange = append([]string(nil), r.BisectRange...)
	out.ResultBisect = append([]string(nil), r.ResultBisect...)
	out.Tags = append([]string(nil), r.Tags...)
	if r.TimeStarted != nil {
		v := *r.TimeStarted
		out.TimeStarted = &v
	}
	if r.TimeDone != nil {
		v := *r.TimeDone
		out.TimeDone = &v
	}
	if r.BotClientData != nil {
		out.BotClientData = append(json.RawMessage(nil), r.BotClientData...)
	}
	return out
}

// PatchOp is one element of a JSON-Patch-style request body.
type PatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value,omitempty"`
}

// Snapshot is the unit persistence.Save/Load exchange with the store: a
// job's record plus its accumulated log text, keyed by id.
type Snapshot struct {
	Record  Record
	Version uint64
	Log     string
}
