package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/features/login"
	userstore "github.com/arikst/schoolhub/internal/app/store/users"
	"github.com/arikst/schoolhub/internal/app/system/auth"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *userstore.Store) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	if err := auth.InitSessionStore("test-key-0123456789", "schoolhub-session", "", false, zap.NewNop()); err != nil {
		t.Fatalf("session store init: %v", err)
	}
	handler := login.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
	return handler, userstore.New(db)
}

func postLogin(email, password, returnTo string) *http.Request {
	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("return", returnTo)
	req := httptest.NewRequest("POST", "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleLogin_Success(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := users.Create(ctx, models.User{
		FullName: "Dana Levi",
		Email:    "dana@school.test",
		Role:     models.RoleManager,
	}, "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postLogin("dana@school.test", "correct horse battery", "/students/"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}
	if loc := rec.Header().Get("Location"); loc != "/students/" {
		t.Errorf("expected redirect to /students/, got %q", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Errorf("expected a session cookie to be set")
	}
}

func TestHandleLogin_WrongPassword(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := users.Create(ctx, models.User{
		FullName: "Dana Levi",
		Email:    "dana@school.test",
		Role:     models.RoleViewer,
	}, "right-password")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postLogin("dana@school.test", "wrong-password", ""))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Incorrect email or password") {
		t.Errorf("expected credentials message in page")
	}
}

func TestHandleLogin_OffsiteReturnIgnored(t *testing.T) {
	handler, users := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := users.Create(ctx, models.User{
		FullName: "Dana Levi",
		Email:    "dana@school.test",
		Role:     models.RoleManager,
	}, "correct horse battery")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	rec := httptest.NewRecorder()
	handler.HandleLogin(rec, postLogin("dana@school.test", "correct horse battery", "https://evil.example/"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect home for off-site return, got %q", loc)
	}
}
