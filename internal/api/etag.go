/*
Shoal is a Redfish aggregator service.
Copyright (C) 2025  Matthew Burns

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package api

import "strings"

// ifNoneMatchMatches reports whether the If-None-Match header value names
// the given etag, supporting the "*" wildcard and a comma-separated list
// of weak or strong validators per RFC 7232 §3.2.
func ifNoneMatchMatches(ifNoneMatch, etag string) bool {
	s := strings.TrimSpace(ifNoneMatch)
	if s == "" {
		return false
	}
	if s == "*" {
		return true
	}
	for _, p := range strings.Split(s, ",") {
		v := strings.TrimSpace(p)
		if v == etag {
			return true
		}
		if strings.HasPrefix(v, "W/") && strings.TrimSpace(strings.TrimPrefix(v, "W/")) == etag {
			return true
		}
	}
	return false
}
