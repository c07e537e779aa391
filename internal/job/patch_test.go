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

package job

import (
	"encoding/json"
	"testing"
)

func newWorking() Record {
	return Record{ID: "id1", Type: TypeBisect, TimeCreated: 1, Gist: "a"}
}

func TestApplyPatchReplaceTopLevel(t *testing.T) {
	w := newWorking()
	err := applyPatch(&w, []PatchOp{{Op: "replace", Path: "/gist", Value: json.RawMessage(`"b"`)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Gist != "b" {
		t.Fatalf("gist not replaced: %s", w.Gist)
	}
}

func TestApplyPatchReadonlyRejected(t *testing.T) {
	w := newWorking()
	err := applyPatch(&w, []PatchOp{{Op: "replace", Path: "/type", Value: json.RawMessage(`"other"`)}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if _, ok := err.(*BadRequestError); !ok {
		t.Fatalf("expected BadRequestError, got %T", err)
	}
	if w.Type != TypeBisect {
		t.Fatalf("type mutated despite rejection")
	}
}

func TestApplyPatchUnknownAttribute(t *testing.T) {
	w := newWorking()
	err := applyPatch(&w, []PatchOp{{Op: "add", Path: "/potrzebie", Value: json.RawMessage(`"x"`)}})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestApplyPatchRemove(t *testing.T) {
	w := newWorking()
	w.Platform = PlatformLinux
	err := applyPatch(&w, []PatchOp{{Op: "remove", Path: "/platform"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Platform != "" {
		t.Fatalf("platform not cleared: %s", w.Platform)
	}
}

func TestApplyPatchNestedBotClientData(t *testing.T) {
	w := newWorking()
	w.BotClientData = json.RawMessage(`{"hello":{"world":1}}`)
	err := applyPatch(&w, []PatchOp{{Op: "replace", Path: "/bot_client_data/hello/world", Value: json.RawMessage(`2`)}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(w.BotClientData, &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	hello := tree["hello"].(map[string]any)
	if hello["world"].(float64) != 2 {
		t.Fatalf("nested value not updated: %#v", hello)
	}
}

func TestApplyPatchMalformedOp(t *testing.T) {
	w := newWorking()
	err := applyPatch(&w, []PatchOp{{Op: "💩", Path: "/gist", Value: json.RawMessage(`"x"`)}})
	if err == nil {
		t.Fatalf("expected error")
	}
	if w.Gist != "a" {
		t.Fatalf("gist mutated despite structural failure")
	}
}

func TestApplyPatchMissingValueForAdd(t *testing.T) {
	w := newWorking()
	err := applyPatch(&w, []PatchOp{{Op: "add", Path: "/gist"}})
	if err == nil {
		t.Fatalf("expected error for missing value")
	}
}
