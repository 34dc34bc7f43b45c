// internal/app/features/grades/routes.go
package grades

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for grade pages; mounted under /grades.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{name}", h.ServeGrade)
	r.Post("/{name}/delete/", h.HandleDeleteGrade)
	return r
}
