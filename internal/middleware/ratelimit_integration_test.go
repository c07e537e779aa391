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

package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bisectbroker/internal/api"
	"bisectbroker/internal/job"
	"bisectbroker/internal/metrics"
	"bisectbroker/internal/middleware"
)

// TestRateLimitedCreateDoesNotMutateStore exercises the real router and
// store behind the rate limiter, not a bare stub handler: a client that
// exceeds its burst must get a 429 with no corresponding job created.
func TestRateLimitedCreateDoesNotMutateStore(t *testing.T) {
	store := job.NewStore()
	reg := metrics.New()
	handler := &api.Handler{Store: store, Metrics: reg}
	mux := api.NewRouter(handler, reg)

	rl := middleware.NewRateLimiter(1, 1)
	defer rl.Close()
	h := rl.Middleware(mux)

	newCreateReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodPost, "/api/jobs", strings.NewReader(`{"gist":"a","type":"bisect"}`))
		req.RemoteAddr = "5.5.5.5:1234"
		return req
	}

	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, newCreateReq())
	if w1.Code != http.StatusCreated {
		t.Fatalf("expected first create to succeed, got %d: %s", w1.Code, w1.Body.String())
	}
	if store.Len() != 1 {
		t.Fatalf("expected 1 job after first create, got %d", store.Len())
	}

	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, newCreateReq())
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second create to be rate limited, got %d: %s", w2.Code, w2.Body.String())
	}
	if store.Len() != 1 {
		t.Fatalf("expected rate-limited create to leave store untouched, got %d jobs", store.Len())
	}
}
