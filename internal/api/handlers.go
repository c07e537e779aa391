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
	"encoding/json"
	"io"
	"net/http"

	"bisectbroker/internal/job"
)

const maxCreateBodyBytes = 1 << 20 // 1 MiB is generous for a job record
const maxLogChunkBytes = 1 << 20

func (h *Handler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBodyBytes+1))
	if err != nil {
		writeCreateError(w, r, &job.BadRequestError{Detail: "could not read request body"})
		return
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		writeCreateError(w, r, &job.BadRequestError{Detail: "malformed JSON body"})
		return
	}

	rec, err := job.ValidateCreate(raw)
	if err != nil {
		writeCreateError(w, r, err)
		return
	}

	id := h.Store.Create(rec)
	h.Metrics.JobsGauge.Set(float64(h.Store.Len()))
	writePlain(w, http.StatusCreated, id)
}

func (h *Handler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, etag, err := h.Store.Get(id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	writeJSONWithETag(w, r, http.StatusOK, rec, etag)
}

func (h *Handler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	clauses := job.ParseQuery(r.URL.Query())
	var ids []string
	if len(clauses) == 0 {
		ids = h.Store.List()
	} else {
		ids = h.Store.ListFiltered(clauses)
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (h *Handler) handlePatchJob(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	ifMatch := r.Header.Get("If-Match")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxCreateBodyBytes+1))
	if err != nil {
		writePatchError(w, r, &job.BadRequestError{Detail: "could not read request body"})
		return
	}
	var ops []job.PatchOp
	if err := json.Unmarshal(body, &ops); err != nil {
		writePatchError(w, r, &job.BadRequestError{Detail: "malformed patch body"})
		return
	}

	etag, err := h.Store.Apply(id, ifMatch, ops)
	if err != nil {
		writePatchError(w, r, err)
		return
	}

	h.Metrics.JobsGauge.Set(float64(h.Store.Len()))
	w.Header().Set("ETag", etag)
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	chunk, err := io.ReadAll(io.LimitReader(r.Body, maxLogChunkBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "could not read request body"})
		return
	}
	if err := h.Store.AppendLog(id, chunk); err != nil {
		writeNotFound(w, r, err)
		return
	}
	h.Metrics.LogBytesTotal.Add(float64(len(chunk)))
	h.Metrics.JobsGauge.Set(float64(h.Store.Len()))
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) handleReadLog(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	text, err := h.Store.ReadLog(id)
	if err != nil {
		writeNotFound(w, r, err)
		return
	}
	writePlain(w, http.StatusOK, text)
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"jobs":   h.Store.Len(),
	})
}
