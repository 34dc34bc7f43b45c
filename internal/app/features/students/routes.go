// internal/app/features/students/routes.go
package students

import (
	"github.com/arikst/schoolhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// ListRoutes returns the subrouter for the school-wide listing; mounted
// under /students.
func ListRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeStudentsList)
	return r
}

// Routes returns the subrouter for a single student; mounted under
// /student. The profile requires a signed-in user; mutations additionally
// check for the manager role in the handlers.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireSignedIn)
		r.Get("/add/", h.ServeNewStudent)
		r.Post("/add/", h.HandleCreateStudent)
		r.Get("/{id}/", h.ServeStudentView)
		r.Get("/{id}/edit/", h.ServeEditStudent)
		r.Post("/{id}/edit/", h.HandleEditStudent)
		r.Post("/{id}/delete/", h.HandleDeleteStudent)
	})

	return r
}
