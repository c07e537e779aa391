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
	"fmt"
	"strings"
)

// applyPatch runs the structural check, readonly guard, and op application
// passes against a working copy. Precondition checking and commit are the
// caller's (Store.Apply's) responsibility; post-validation is the caller's
// too, via ValidatePatchResult.
func applyPatch(working *Record, ops []PatchOp) error {
	for _, op := range ops {
		if err := checkStructural(op); err != nil {
			return err
		}
	}
	for _, op := range ops {
		if err := checkReadonly(op); err != nil {
			return err
		}
	}
	for _, op := range ops {
		if err := applyOp(working, op); err != nil {
			return err
		}
	}
	return nil
}

func checkStructural(op PatchOp) error {
	switch op.Op {
	case "add", "replace", "remove":
	default:
		return &BadRequestError{Detail: fmt.Sprintf("unknown op %q", op.Op)}
	}
	if !strings.HasPrefix(op.Path, "/") {
		return &BadRequestError{Detail: fmt.Sprintf("malformed path %q", op.Path)}
	}
	if op.Op != "remove" && len(op.Value) == 0 {
		return &BadRequestError{Detail: fmt.Sprintf("op %q at %q requires a value", op.Op, op.Path)}
	}
	return nil
}

func checkReadonly(op PatchOp) error {
	attr := pathHead(op.Path)
	if readonlyAttrs[attr] {
		return &BadRequestError{Detail: fmt.Sprintf("%q is readonly", op.Path)}
	}
	if !declaredAttrs[attr] {
		return &BadRequestError{Detail: fmt.Sprintf("unknown attribute in path %q", op.Path)}
	}
	return nil
}

// pathHead returns the first segment of a slash-delimited JSON-pointer-like
// path, e.g. "/bot_client_data/hello" -> "bot_client_data".
func pathHead(path string) string {
	trimmed := strings.TrimPrefix(path, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		return trimmed[:i]
	}
	return trimmed
}

func applyOp(working *Record, op PatchOp) error {
	segments := strings.Split(strings.TrimPrefix(op.Path, "/"), "/")
	attr := segments[0]

	if attr == attrBotData && len(segments) > 1 {
		return applyNestedOp(working, segments[1:], op)
	}
	if len(segments) != 1 {
		return &BadRequestError{Detail: fmt.Sprintf("path %q is not addressable", op.Path)}
	}

	switch attr {
	case attrGist:
		var v string
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
		working.Gist = v
	case attrPlatform:
		var v string
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
		working.Platform = Platform(v)
	case attrBisectRange:
		working.BisectRange = nil
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &working.BisectRange); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
	case attrResultBis:
		working.ResultBisect = nil
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &working.ResultBisect); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
	case attrBotData:
		if op.Op == "remove" {
			working.BotClientData = nil
		} else {
			working.BotClientData = append(json.RawMessage(nil), op.Value...)
		}
	case attrError:
		var v string
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
		working.Error = v
	case attrTags:
		working.Tags = nil
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &working.Tags); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
	case attrUser:
		var v string
		if op.Op != "remove" {
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
		}
		working.User = v
	case attrTimeStarted:
		if op.Op == "remove" {
			working.TimeStarted = nil
		} else {
			var v int64
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
			working.TimeStarted = &v
		}
	case attrTimeDone:
		if op.Op == "remove" {
			working.TimeDone = nil
		} else {
			var v int64
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
			working.TimeDone = &v
		}
	default:
		return &BadRequestError{Detail: fmt.Sprintf("unknown attribute in path %q", op.Path)}
	}
	return nil
}

// applyNestedOp mutates a path inside bot_client_data's open-typed tree.
// The tree is decoded to a generic any, walked/mutated, and re-encoded.
func applyNestedOp(working *Record, segments []string, op PatchOp) error {
	var tree any
	if working.BotClientData != nil {
		if err := json.Unmarshal(working.BotClientData, &tree); err != nil {
			return &BadRequestError{Detail: "bot_client_data is not a valid JSON tree"}
		}
	}

	root, ok := tree.(map[string]any)
	if !ok {
		if tree == nil {
			root = map[string]any{}
		} else {
			return &BadRequestError{Detail: fmt.Sprintf("path %q does not address a mapping", op.Path)}
		}
	}

	if err := mutateTree(root, segments, op); err != nil {
		return err
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
	}
	working.BotClientData = raw
	return nil
}

func mutateTree(node map[string]any, segments []string, op PatchOp) error {
	key := segments[0]
	if len(segments) == 1 {
		switch op.Op {
		case "remove":
			delete(node, key)
		case "add", "replace":
			var v any
			if err := json.Unmarshal(op.Value, &v); err != nil {
				return &BadRequestError{Detail: fmt.Sprintf("invalid value at %q", op.Path)}
			}
			node[key] = v
		}
		return nil
	}

	child, ok := node[key].(map[string]any)
	if !ok {
		if op.Op == "remove" {
			return nil
		}
		child = map[string]any{}
		node[key] = child
	}
	return mutateTree(child, segments[1:], op)
}
