// internal/app/system/authz/authz.go
package authz

import (
	"net/http"
	"strings"

	"github.com/arikst/schoolhub/internal/app/system/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserCtx returns the user's role (lowercased), display name, Mongo ObjectID,
// and a found flag. If no user is present in context or the user ID is
// malformed, it returns "visitor", "", NilObjectID, false so callers can
// trust that ok=true means a valid, authenticated user.
func UserCtx(r *http.Request) (role string, name string, userID primitive.ObjectID, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "visitor", "", primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		// Malformed user ID in session - fail closed.
		return "visitor", "", primitive.NilObjectID, false
	}
	return strings.ToLower(user.Role), user.Name, userID, true
}

// IsManager reports whether the current request's user is authenticated and
// holds the manager role. Every student mutation handler checks this before
// performing any write.
func IsManager(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "manager"
}

// IsViewer reports whether the current request's user is a read-only viewer.
func IsViewer(r *http.Request) bool {
	role, _, _, ok := UserCtx(r)
	return ok && role == "viewer"
}

// ActorName returns the display name used for audit rows: the signed-in
// user's name, or "Anonymous" for unauthenticated callers.
func ActorName(r *http.Request) string {
	user, ok := auth.CurrentUser(r)
	if !ok || user.Name == "" {
		return "Anonymous"
	}
	return user.Name
}
