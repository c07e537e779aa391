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
	"errors"
	"log/slog"
	"net/http"

	"bisectbroker/internal/ctxkeys"
	"bisectbroker/internal/job"
)

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
}

// writeCreateError maps an error from ValidateCreate/Store.Create to the
// HTTP status the create path uses: 422 for schema violations.
func writeCreateError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *job.ValidationError
	if errors.As(err, &ve) {
		logErr(r, http.StatusUnprocessableEntity, err)
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Field: ve.Field, Value: ve.Value})
		return
	}
	logErr(r, http.StatusBadRequest, err)
	writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
}

// writePatchError maps an error from Store.Apply to its status:
// ValidationError and BadRequest both surface as 400 on the patch path,
// NotFound as 404, PreconditionFailed as 412.
func writePatchError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *job.ValidationError
	var be *job.BadRequestError
	var nf *job.NotFoundError
	var pf *job.PreconditionFailedError

	switch {
	case errors.As(err, &ve):
		logErr(r, http.StatusBadRequest, err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Error(), Field: ve.Field, Value: ve.Value})
	case errors.As(err, &be):
		logErr(r, http.StatusBadRequest, err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: be.Error()})
	case errors.As(err, &nf):
		logErr(r, http.StatusNotFound, err)
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
	case errors.As(err, &pf):
		logErr(r, http.StatusPreconditionFailed, err)
		writeJSON(w, http.StatusPreconditionFailed, errorBody{Error: pf.Error()})
	default:
		logErr(r, http.StatusInternalServerError, err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// writeNotFound maps a lookup miss (Get, ReadLog, AppendLog) to 404.
func writeNotFound(w http.ResponseWriter, r *http.Request, err error) {
	var nf *job.NotFoundError
	if errors.As(err, &nf) {
		logErr(r, http.StatusNotFound, err)
		writeJSON(w, http.StatusNotFound, errorBody{Error: nf.Error()})
		return
	}
	logErr(r, http.StatusInternalServerError, err)
	writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func logErr(r *http.Request, status int, err error) {
	level := slog.LevelWarn
	if status >= 500 {
		level = slog.LevelError
	}
	slog.Log(r.Context(), level, "request failed",
		"status", status,
		"error", err,
		"request_id", ctxkeys.GetCorrelationID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
	)
}
