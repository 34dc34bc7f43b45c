package errors_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.uber.org/zap"
)

func TestRenderPages_Statuses(t *testing.T) {
	testutil.BootTemplates(t)

	cases := []struct {
		name   string
		render func(w http.ResponseWriter, r *http.Request)
		status int
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			uierrors.RenderUnauthorized(w, r, "")
		}, http.StatusUnauthorized},
		{"forbidden", func(w http.ResponseWriter, r *http.Request) {
			uierrors.RenderForbidden(w, r, "Managers only.", "/")
		}, http.StatusForbidden},
		{"notfound", func(w http.ResponseWriter, r *http.Request) {
			uierrors.RenderNotFound(w, r, "", "/")
		}, http.StatusNotFound},
		{"server", func(w http.ResponseWriter, r *http.Request) {
			uierrors.RenderServerError(w, r, "", "/")
		}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			rec := httptest.NewRecorder()
			tc.render(rec, req)
			if rec.Code != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, rec.Code)
			}
		})
	}
}

func TestLogServerError_RendersServerErrorPage(t *testing.T) {
	testutil.BootTemplates(t)

	errLog := uierrors.NewErrorLogger(zap.NewNop())
	req := httptest.NewRequest("GET", "/students/", nil)
	rec := httptest.NewRecorder()

	errLog.LogServerError(rec, req, "database error", errors.New("boom"), "A database error occurred.", "/")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "A database error occurred.") {
		t.Errorf("expected user message in page")
	}
	if strings.Contains(body, "Access denied") {
		t.Errorf("expected a server error page, not the forbidden page")
	}
	if strings.Contains(body, "boom") {
		t.Errorf("internal error text must not leak into the page")
	}
}
