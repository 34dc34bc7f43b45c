// internal/testutil/http.go
package testutil

import (
	"context"
	"net/http"

	"github.com/arikst/schoolhub/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// ManagerUser returns a session user with the manager role.
func ManagerUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Manager",
		Role: "manager",
	}
}

// ViewerUser returns a session user with the viewer role.
func ViewerUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:   primitive.NewObjectID().Hex(),
		Name: "Test Viewer",
		Role: "viewer",
	}
}

// AsManager injects a manager session user into the request context.
func AsManager(r *http.Request) *http.Request {
	return auth.WithTestUser(r, ManagerUser())
}

// AsViewer injects a viewer session user into the request context.
func AsViewer(r *http.Request) *http.Request {
	return auth.WithTestUser(r, ViewerUser())
}
