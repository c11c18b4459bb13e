package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/lotpad/internal/editorservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *editorservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Editor session.
	r.Get("/editor", h.GetState)
	r.Put("/editor/text", h.Edit)
	r.Post("/editor/save", h.Save)
	r.Post("/editor/save-as", h.SaveAs)
	r.Post("/editor/new", h.NewFile)
	r.Post("/editor/open/*", h.Open)

	// Stored files.
	r.Get("/files", h.ListFiles)
	r.Get("/files/*", h.GetFile)
	r.Delete("/files/*", h.DeleteFile)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
