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

import (
	"net/http"

	"bisectbroker/internal/job"
	"bisectbroker/internal/metrics"
)

// Handler wires job store operations to HTTP. It holds no store lock of
// its own; every method defers to Store's already-synchronized contract.
type Handler struct {
	Store   *job.Store
	Metrics metrics.Registry
}

// NewRouter builds the full HTTP surface: the job broker's own endpoints
// plus /healthz and /metrics. Correlation, security headers, and rate
// limiting are applied by the caller (cmd/bisectd) via internal/middleware,
// not here, so this router stays a thin adapter.
func NewRouter(h *Handler, reg metrics.Registry) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/jobs", h.handleCreateJob)
	mux.HandleFunc("GET /api/jobs", h.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", h.handleGetJob)
	mux.HandleFunc("PATCH /api/jobs/{id}", h.handlePatchJob)
	mux.HandleFunc("PUT /api/jobs/{id}/log", h.handleAppendLog)
	mux.HandleFunc("GET /log/{id}", h.handleReadLog)

	mux.HandleFunc("GET /healthz", h.handleHealthz)
	mux.Handle("GET /metrics", reg.Handler())

	return mux
}
