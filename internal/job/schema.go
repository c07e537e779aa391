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

// NOTE: this is a pragmatic, hand-rolled validator mirroring the record's
// key constraints rather than a general-purpose JSON Schema engine; the
// attribute set is small and fixed, so a full schema library buys nothing
// here.

import (
	"encoding/json"
	"regexp"
	"strconv"
)

// semverPattern is the core "MAJOR.MINOR.PATCH" form with optional
// prerelease/build metadata, per semver.org's grammar.
var semverPattern = regexp.MustCompile(`^(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)` +
	`(-[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?(\+[0-9A-Za-z-]+(\.[0-9A-Za-z-]+)*)?$`)

func isSemver(s string) bool { return semverPattern.MatchString(s) }

// ValidateCreate checks a raw create payload against the declared
// attribute set and per-attribute predicates. On success it returns a
// Record populated with every attribute the caller may set at creation
// time (id and time_created are filled in by the store, not here; the
// validated type is set here and the store sets it again on Create).
func ValidateCreate(raw map[string]json.RawMessage) (Record, error) {
	for k := range raw {
		if !declaredAttrs[k] {
			return Record{}, &ValidationError{Field: k}
		}
	}

	gistRaw, ok := raw[attrGist]
	if !ok {
		return Record{}, &ValidationError{Field: attrGist}
	}
	var gist string
	if err := json.Unmarshal(gistRaw, &gist); err != nil || gist == "" {
		return Record{}, &ValidationError{Field: attrGist}
	}

	typeRaw, ok := raw[attrType]
	if !ok {
		return Record{}, &ValidationError{Field: attrType}
	}
	var typ string
	if err := json.Unmarshal(typeRaw, &typ); err != nil {
		return Record{}, &ValidationError{Field: attrType}
	}
	if !Type(typ).valid() {
		return Record{}, &ValidationError{Field: attrType, Value: typ}
	}

	rec := Record{Gist: gist, Type: Type(typ)}

	if v, ok := raw[attrPlatform]; ok {
		var p string
		if err := json.Unmarshal(v, &p); err != nil {
			return Record{}, &ValidationError{Field: attrPlatform}
		}
		if !Platform(p).valid() {
			return Record{}, &ValidationError{Field: attrPlatform, Value: p}
		}
		rec.Platform = Platform(p)
	}

	if v, ok := raw[attrBisectRange]; ok {
		pair, err := decodeVersionPair(attrBisectRange, v)
		if err != nil {
			return Record{}, err
		}
		rec.BisectRange = pair
	}

	if v, ok := raw[attrResultBis]; ok {
		pair, err := decodeVersionPair(attrResultBis, v)
		if err != nil {
			return Record{}, err
		}
		rec.ResultBisect = pair
	}

	if v, ok := raw[attrBotData]; ok {
		rec.BotClientData = append(json.RawMessage(nil), v...)
	}

	if v, ok := raw[attrError]; ok {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return Record{}, &ValidationError{Field: attrError}
		}
		rec.Error = s
	}

	if v, ok := raw[attrTags]; ok {
		var tags []string
		if err := json.Unmarshal(v, &tags); err != nil {
			return Record{}, &ValidationError{Field: attrTags}
		}
		rec.Tags = tags
	}

	if v, ok := raw[attrUser]; ok {
		var u string
		if err := json.Unmarshal(v, &u); err != nil {
			return Record{}, &ValidationError{Field: attrUser}
		}
		rec.User = u
	}

	if v, ok := raw[attrTimeStarted]; ok {
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return Record{}, &ValidationError{Field: attrTimeStarted}
		}
		rec.TimeStarted = &n
	}
	if v, ok := raw[attrTimeDone]; ok {
		var n int64
		if err := json.Unmarshal(v, &n); err != nil {
			return Record{}, &ValidationError{Field: attrTimeDone}
		}
		rec.TimeDone = &n
	}

	return rec, nil
}

func decodeVersionPair(field string, raw json.RawMessage) ([]string, error) {
	var pair []string
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return nil, &ValidationError{Field: field}
	}
	for _, v := range pair {
		if !isSemver(v) {
			return nil, &ValidationError{Field: field, Value: v}
		}
	}
	return pair, nil
}

// ValidatePatchResult re-checks every create-time invariant against a
// working copy after patch ops have been applied. It never re-derives
// readonly violations (the patch engine rejects those before apply); it
// only confirms the resulting record is still well-formed.
func ValidatePatchResult(r Record) error {
	if r.Gist == "" {
		return &ValidationError{Field: attrGist}
	}
	if !r.Type.valid() {
		return &ValidationError{Field: attrType, Value: string(r.Type)}
	}
	if r.Platform != "" && !r.Platform.valid() {
		return &ValidationError{Field: attrPlatform, Value: string(r.Platform)}
	}
	if r.BisectRange != nil {
		if len(r.BisectRange) != 2 {
			return &ValidationError{Field: attrBisectRange}
		}
		for _, v := range r.BisectRange {
			if !isSemver(v) {
				return &ValidationError{Field: attrBisectRange, Value: v}
			}
		}
	}
	if r.ResultBisect != nil {
		if len(r.ResultBisect) != 2 {
			return &ValidationError{Field: attrResultBis}
		}
		for _, v := range r.ResultBisect {
			if !isSemver(v) {
				return &ValidationError{Field: attrResultBis, Value: v}
			}
		}
	}
	return nil
}

// FilterValue is the typed result of coercing a query-string atom for
// comparison against a resolved record attribute. Undefined is true when
// the atom was the literal "undefined" sentinel.
type FilterValue struct {
	Undefined bool
	Value     any
}

// CoerceFilterValue turns the string form of a query atom into the typed
// value used for comparison, using the attribute's declared type where one
// is known. Any other attribute path, known or not, goes through the
// generic JSON scalar parse below and otherwise stays a bare string; unknown
// paths are not an error, since the query engine resolves them to absent.
func CoerceFilterValue(attrPath, raw string) FilterValue {
	if raw == "undefined" {
		return FilterValue{Undefined: true}
	}
	switch attrPath {
	case attrTimeCreated, attrTimeStarted, attrTimeDone:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return FilterValue{Value: n}
		}
	}
	// Try a generic JSON scalar literal (numbers, booleans, quoted strings,
	// null) before falling back to treating the atom as a bare string; this
	// lets "true"/"1"/"\"quoted\"" compare the way a JSON-equality check
	// would expect, without requiring per-attribute types
	// for bot_client_data's open-typed tree.
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case float64, bool, string, nil:
			return FilterValue{Value: v}
		}
	}
	return FilterValue{Value: raw}
}
