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

import "testing"

func TestComputeETagStableAndInjective(t *testing.T) {
	a := computeETag("id1", 1)
	b := computeETag("id1", 1)
	if a != b {
		t.Fatalf("expected stable etag for same (id, version)")
	}
	if a == computeETag("id1", 2) {
		t.Fatalf("expected different etag for different version")
	}
	if a == computeETag("id2", 1) {
		t.Fatalf("expected different etag for different id")
	}
}

func TestEtagMatches(t *testing.T) {
	e := computeETag("id1", 1)
	if !etagMatches(e, e) {
		t.Fatalf("expected exact match")
	}
	if etagMatches("stale", e) {
		t.Fatalf("expected mismatch")
	}
}
