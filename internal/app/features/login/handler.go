// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	userstore "github.com/arikst/schoolhub/internal/app/store/users"
	"github.com/arikst/schoolhub/internal/app/system/auth"
	"github.com/arikst/schoolhub/internal/app/system/formutil"
	"github.com/arikst/schoolhub/internal/app/system/normalize"
	"github.com/arikst/schoolhub/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	DB     *mongo.Database
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{DB: db, ErrLog: errLog, Log: logger}
}

type loginData struct {
	formutil.Base
	Email  string
	Return string
}

// safeReturn keeps redirects on-site. Anything that is not a plain local
// path falls back to the home page.
func safeReturn(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") {
		return "/"
	}
	return raw
}

// ServeLoginForm renders the sign-in page.
// GET /login?return=...
func (h *Handler) ServeLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, safeReturn(query.Get(r, "return")), http.StatusSeeOther)
		return
	}

	data := loginData{Return: query.Get(r, "return")}
	formutil.SetBase(&data.Base, r, "Sign in", "/")
	templates.Render(w, r, "login", data)
}

// HandleLogin checks the submitted credentials and starts a session.
// POST /login
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnTo := r.FormValue("return")

	renderError := func(msg string) {
		data := loginData{Email: email, Return: returnTo}
		formutil.SetBase(&data.Base, r, "Sign in", "/")
		data.SetError(msg)
		w.WriteHeader(http.StatusUnauthorized)
		templates.Render(w, r, "login", data)
	}

	if email == "" || password == "" {
		renderError("Email and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := userstore.New(h.DB).Authenticate(ctx, email, password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.Log.Info("failed sign-in attempt", zap.String("email", email))
		renderError("Incorrect email or password.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error during sign-in", err, "A database error occurred.", "/login")
		return
	}

	su := auth.SessionUser{
		ID:   user.ID.Hex(),
		Name: user.FullName,
		Role: user.Role,
	}
	if err := auth.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "could not establish session", err, "Could not sign you in.", "/login")
		return
	}

	h.Log.Info("user signed in",
		zap.String("user_id", su.ID),
		zap.String("role", su.Role))

	http.Redirect(w, r, safeReturn(returnTo), http.StatusSeeOther)
}
