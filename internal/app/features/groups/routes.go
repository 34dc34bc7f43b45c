// internal/app/features/groups/routes.go
package groups

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for group pages; mounted under /group.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/add/", h.ServeNewGroup)
	r.Post("/add/", h.HandleCreateGroup)
	r.Get("/{id}", h.ServeGroupView)
	r.Get("/{id}/edit/", h.ServeEditGroup)
	r.Post("/{id}/edit/", h.HandleEditGroup)
	r.Post("/{id}/delete/", h.HandleDeleteGroup)
	return r
}
