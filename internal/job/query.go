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
	"strings"
)

// Clause is one parsed filter clause: an attribute path, whether it is
// negated, and the set of coerced values (or the undefined sentinel) it is
// compared against.
type Clause struct {
	Path   string
	Negate bool
	Values []FilterValue
}

// ParseQuery turns raw query-string key/value pairs into clauses. Each key
// may end in "!" for negation; each value is a comma-separated list of
// atoms.
func ParseQuery(params map[string][]string) []Clause {
	clauses := make([]Clause, 0, len(params))
	for key, vals := range params {
		path := key
		negate := false
		if strings.HasSuffix(key, "!") {
			path = strings.TrimSuffix(key, "!")
			negate = true
		}
		var values []FilterValue
		for _, raw := range vals {
			for _, atom := range strings.Split(raw, ",") {
				values = append(values, CoerceFilterValue(path, atom))
			}
		}
		clauses = append(clauses, Clause{Path: path, Negate: negate, Values: values})
	}
	return clauses
}

// matchesAll reports whether rec satisfies every clause (AND-combination).
func matchesAll(rec Record, clauses []Clause) bool {
	for _, c := range clauses {
		if !matchesClause(rec, c) {
			return false
		}
	}
	return true
}

func matchesClause(rec Record, c Clause) bool {
	resolved, present := resolvePath(rec, c.Path)

	member := false
	for _, v := range c.Values {
		if v.Undefined {
			if !present {
				member = true
				break
			}
			continue
		}
		if !present {
			continue
		}
		if jsonEqual(resolved, v.Value) {
			member = true
			break
		}
	}

	if c.Negate {
		return !member
	}
	return member
}

// resolvePath walks a dotted attribute path against the record's JSON
// projection. Paths traverse mappings only; the second return value is
// false when any segment is missing.
func resolvePath(rec Record, path string) (any, bool) {
	asMap, err := recordToMap(rec)
	if err != nil {
		return nil, false
	}
	segments := strings.Split(path, ".")
	var cur any = asMap
	for _, seg := range segments {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		v, ok := m[seg]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func recordToMap(rec Record) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// jsonEqual compares two decoded JSON scalars/structures for equality the
// way JSON-value equality requires: numbers compare as float64, everything
// else by recursive structural equality.
func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	var na, nb any
	if err := json.Unmarshal(ab, &na); err != nil {
		return false
	}
	if err := json.Unmarshal(bb, &nb); err != nil {
		return false
	}
	return deepEqual(na, nb)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}
