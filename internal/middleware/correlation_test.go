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

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bisectbroker/internal/ctxkeys"
)

func TestCorrelationGeneratesWhenAbsent(t *testing.T) {
	var seen string
	h := Correlation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.GetCorrelationID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if seen == "" {
		t.Fatalf("expected generated correlation id in context")
	}
	if w.Header().Get("X-Request-Id") != seen {
		t.Fatalf("expected response header to echo context id")
	}
}

func TestCorrelationPreservesInbound(t *testing.T) {
	h := Correlation(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-Id"); got != "abc123" {
		t.Fatalf("expected inbound id preserved, got %s", got)
	}
}
