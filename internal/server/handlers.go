// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pdiddy/litbridge/internal/export"
	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/internal/querytrans"
	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/store"
	"github.com/pdiddy/litbridge/pkg/types"
)

// Searcher runs a reconciled search.
type Searcher interface {
	Search(ctx context.Context, req types.SearchRequest) (search.Output, error)
}

// Cache keeps searches for later export.
type Cache interface {
	Add(ctx context.Context, e store.Entry) (string, error)
	Get(ctx context.Context, id string) (store.Entry, error)
	List(ctx context.Context) ([]store.Summary, error)
}

// TranslateRequest is the body of POST /api/translate.
type TranslateRequest struct {
	Query string `json:"query" validate:"max=20000"`
}

// Handler serves the litbridge API.
type Handler struct {
	Searcher Searcher
	Cache    Cache
}

func (h *Handler) translate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[TranslateRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	start, end := querytrans.ExtractISODates(req.Query)
	writeJSON(w, http.StatusOK, types.TranslateResponse{
		Query:      req.Query,
		Translated: querytrans.Translate(req.Query),
		DateStart:  start,
		DateEnd:    end,
	})
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	req, err := decodeJSON[types.SearchRequest](r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out, err := h.Searcher.Search(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	id, err := h.Cache.Add(r.Context(), store.Entry{
		Request:  req,
		Coverage: out.Coverage,
		Papers:   out.Papers,
		Warnings: out.Warnings,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Response(id))
}

func (h *Handler) listSearches(w http.ResponseWriter, r *http.Request) {
	list, err := h.Cache.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []store.Summary{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Detail: err.Error()})
		return
	}

	entry, err := h.Cache.Get(r.Context(), chi.URLParam(r, "searchID"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format, entry.Papers); err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename="+format.Filename())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

type errorBody struct {
	Detail string `json:"detail"`
}

// writeError maps domain errors onto HTTP statuses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	detail := "internal error"
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, search.ErrInvalidRequest):
		status, detail = http.StatusBadRequest, err.Error()
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrExpired):
		status, detail = http.StatusNotFound, "search results not found or expired"
	case errors.Is(err, search.ErrUpstream):
		status, detail = http.StatusBadGateway, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		status, detail = http.StatusGatewayTimeout, "search timed out"
	}

	log := logger.C(r.Context())
	ev := log.Warn()
	if status >= http.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).Int("status", status).Str("path", r.URL.Path).Msg("request failed")

	writeJSON(w, status, errorBody{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
