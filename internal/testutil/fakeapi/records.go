package fakeapi

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/samplekeeper/internal/client/entities"
	"github.com/dmitrijs2005/samplekeeper/internal/client/models"
)

const msgNotFound = "Not found."

// recordHandler serves the collection and item endpoints of one kind.
type recordHandler struct {
	srv  *Server
	desc *entities.Descriptor
}

// failed answers with the forced status of the kind, if one is set.
func (h *recordHandler) failed(w http.ResponseWriter) bool {
	h.srv.mu.Lock()
	status, ok := h.srv.failing[h.desc.Kind]
	h.srv.mu.Unlock()

	if ok {
		writeJSON(w, status, detail("Simulated failure for "+h.desc.Kind+"."))
	}
	return ok
}

func (h *recordHandler) list(w http.ResponseWriter, r *http.Request) {
	if h.failed(w) {
		return
	}

	items := h.srv.Records(h.desc.Kind)
	if key := h.srv.envelope; key != "" {
		writeJSON(w, http.StatusOK, map[string]any{key: items, "count": len(items)})
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *recordHandler) create(w http.ResponseWriter, r *http.Request) {
	if h.failed(w) {
		return
	}

	var in models.Record
	if !decodeJSON(w, r, &in) {
		return
	}
	if errs := h.validate(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	h.srv.mu.Lock()
	rec := h.srv.data[h.desc.Kind].insert(h.accepted(in)).Clone()
	h.srv.mu.Unlock()

	writeJSON(w, http.StatusCreated, rec)
}

func (h *recordHandler) update(w http.ResponseWriter, r *http.Request) {
	if h.failed(w) {
		return
	}

	var in models.Record
	if !decodeJSON(w, r, &in) {
		return
	}
	if errs := h.validate(in); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, errs)
		return
	}

	id := chi.URLParam(r, "id")

	h.srv.mu.Lock()
	col := h.srv.data[h.desc.Kind]
	i := col.index(id)
	var rec models.Record
	if i >= 0 {
		rec = h.accepted(in)
		rec["id"] = col.records[i]["id"]
		if ts, ok := col.records[i]["created_at"]; ok {
			rec["created_at"] = ts
		}
		col.records[i] = rec
		rec = rec.Clone()
	}
	h.srv.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, detail(msgNotFound))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *recordHandler) delete(w http.ResponseWriter, r *http.Request) {
	if h.failed(w) {
		return
	}

	id := chi.URLParam(r, "id")

	h.srv.mu.Lock()
	col := h.srv.data[h.desc.Kind]
	i := col.index(id)
	if i >= 0 {
		col.records = append(col.records[:i:i], col.records[i+1:]...)
	}
	h.srv.mu.Unlock()

	if i < 0 {
		writeJSON(w, http.StatusNotFound, detail(msgNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// validate reports required fields that are absent, null or blank.
func (h *recordHandler) validate(in models.Record) fieldErrors {
	errs := fieldErrors{}
	for _, f := range h.desc.Fields {
		if !f.Required || f.Type == entities.Checkbox {
			continue
		}
		switch v := in[f.Key].(type) {
		case nil:
			errs.add(f.Key, msgRequired)
		case string:
			if strings.TrimSpace(v) == "" {
				errs.add(f.Key, msgRequired)
			}
		}
	}
	return errs
}

// accepted keeps the declared fields of in; server-owned keys are dropped.
func (h *recordHandler) accepted(in models.Record) models.Record {
	out := make(models.Record, len(h.desc.Fields))
	for _, f := range h.desc.Fields {
		if v, ok := in[f.Key]; ok {
			out[f.Key] = v
		}
	}
	return out
}
