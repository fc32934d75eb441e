package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"baas-admin-go/internal/api"
	"baas-admin-go/internal/models"
	"baas-admin-go/internal/view"

	"github.com/go-chi/chi/v5"
)

type handler struct {
	dashboard *api.Dashboard
}

type viewResponse struct {
	Relation string       `json:"relation"`
	Headers  []string     `json:"headers"`
	Rows     []models.Row `json:"rows"`
}

type createAccountRequest struct {
	Email    string          `json:"email"`
	Password string          `json:"password"`
	Metadata json.RawMessage `json:"metadata"`
}

type metadataRequest struct {
	Metadata json.RawMessage `json:"metadata"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.HealthCheck(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) listRelations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]view.RelationSpec{
		"relations": h.dashboard.Registry().Specs(),
	})
}

func (h *handler) listRows(w http.ResponseWriter, r *http.Request) {
	relation := chi.URLParam(r, "relation")
	v, err := h.dashboard.Load(r.Context(), relation)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	rows := v.Rows
	if rows == nil {
		rows = []models.Row{}
	}
	writeJSON(w, http.StatusOK, viewResponse{Relation: v.Relation, Headers: v.Headers, Rows: rows})
}

func (h *handler) insertRow(w http.ResponseWriter, r *http.Request) {
	relation := chi.URLParam(r, "relation")
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := h.dashboard.InsertRow(r.Context(), relation, fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeCurrentView(w, http.StatusCreated, relation)
}

func (h *handler) updateRow(w http.ResponseWriter, r *http.Request) {
	relation := chi.URLParam(r, "relation")
	var fields map[string]any
	if err := decodeJSON(r, &fields); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := h.dashboard.UpdateRow(r.Context(), relation, primaryKey(r), fields); err != nil {
		writeStoreError(w, err)
		return
	}
	h.writeCurrentView(w, http.StatusOK, relation)
}

func (h *handler) deleteRow(w http.ResponseWriter, r *http.Request) {
	relation := chi.URLParam(r, "relation")
	if err := h.dashboard.DeleteRow(r.Context(), relation, primaryKey(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	refresh, _ := strconv.ParseBool(r.URL.Query().Get("refresh"))
	accounts := h.dashboard.Accounts(r.Context(), refresh)
	if accounts == nil {
		accounts = []models.Account{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if err := h.dashboard.CreateAccount(r.Context(), req.Email, req.Password, rawMetadata(req.Metadata)); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
}

func (h *handler) updateAccountMetadata(w http.ResponseWriter, r *http.Request) {
	var req metadataRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.dashboard.UpdateAccountMetadata(r.Context(), id, rawMetadata(req.Metadata)); err != nil {
		writeStoreError(w, err)
		return
	}
	account, _ := h.dashboard.LookupAccount(id)
	writeJSON(w, http.StatusOK, account)
}

func (h *handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.DeleteAccount(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) writeCurrentView(w http.ResponseWriter, status int, relation string) {
	rows := h.dashboard.GetDisplayRows(relation)
	if rows == nil {
		rows = []models.Row{}
	}
	writeJSON(w, status, viewResponse{
		Relation: relation,
		Headers:  h.dashboard.GetHeaders(relation),
		Rows:     rows,
	})
}

// primaryKey keeps numeric ids numeric so both gateways compare them the way
// the relation stores them.
func primaryKey(r *http.Request) any {
	raw := chi.URLParam(r, "id")
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	return raw
}

// rawMetadata returns nil for an absent field so the dashboard can tell
// "not provided" from an explicit value.
func rawMetadata(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
