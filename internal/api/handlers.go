package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lotpad/internal/editorservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *editorservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *editorservice.Service) *Handler {
	return &Handler{svc: svc}
}

// fileName extracts the wildcard file name from the URL. Encoded slashes
// (e.g. drafts%2Fa.txt) are accepted.
func fileName(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// decodeBody decodes a JSON body into v. An empty body leaves v unchanged
// when optional is true.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, optional bool) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
	return false
}

// GetState handles GET /api/editor.
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.State(r.Context()))
}

// Edit handles PUT /api/editor/text.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	var req EditRequest
	if !decodeBody(w, r, &req, false) {
		return
	}
	st, err := h.svc.Edit(r.Context(), req.Text)
	if err != nil {
		writeError(w, "edit", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Save handles POST /api/editor/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	st, err := h.svc.Save(r.Context(), req.Name)
	if err != nil {
		writeError(w, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// SaveAs handles POST /api/editor/save-as.
func (h *Handler) SaveAs(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if !decodeBody(w, r, &req, true) {
		return
	}
	st, err := h.svc.SaveAs(r.Context(), req.Name)
	if err != nil {
		writeError(w, "save as", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// NewFile handles POST /api/editor/new.
func (h *Handler) NewFile(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.NewFile(r.Context())
	if err != nil {
		writeError(w, "new file", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Open handles POST /api/editor/open/*.
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	st, err := h.svc.Open(r.Context(), name)
	if err != nil {
		writeError(w, "open", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// ListFiles handles GET /api/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.svc.Files(r.Context())
	if err != nil {
		writeError(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, FileListResponse{Files: files})
}

// GetFile handles GET /api/files/*.
func (h *Handler) GetFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	content, err := h.svc.ReadFile(r.Context(), name)
	if err != nil {
		writeError(w, "read file", err)
		return
	}
	writeJSON(w, http.StatusOK, FileResponse{Name: name, Content: content})
}

// DeleteFile handles DELETE /api/files/*.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	name := fileName(r)
	if name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	if err := h.svc.DeleteFile(r.Context(), name); err != nil {
		writeError(w, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
