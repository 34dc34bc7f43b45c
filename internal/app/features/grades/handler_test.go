package grades_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/features/grades"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	gradestore "github.com/arikst/schoolhub/internal/app/store/grades"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*grades.Handler, *testutil.Fixtures, *audit.Store) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	auditStore := audit.New(db)
	logger := auditlog.New(auditStore, zap.NewNop(), auditlog.Config{Mode: "db"})
	handler := grades.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), logger, zap.NewNop())
	return handler, testutil.NewFixtures(t, db), auditStore
}

func TestServeGrade_GroupsAndCounts(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	g1 := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	fixtures.CreateGroup(ctx, "ז-2", grade.ID)
	fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, g1.ID)

	req := httptest.NewRequest("GET", "/grades/7th", nil)
	req = testutil.WithChiURLParam(req, "name", "7th")
	rec := httptest.NewRecorder()

	handler.ServeGrade(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ז-1") || !strings.Contains(body, "ז-2") {
		t.Errorf("expected both groups in page")
	}
	if !strings.Contains(body, "1 students in this grade") {
		t.Errorf("expected grade total of 1 in page")
	}
}

func TestServeGrade_Unknown_NotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/grades/12th", nil)
	req = testutil.WithChiURLParam(req, "name", "12th")
	rec := httptest.NewRecorder()

	handler.ServeGrade(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestHandleDeleteGrade_CascadesAndAudits(t *testing.T) {
	handler, fixtures, auditStore := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)
	fixtures.CreateAssessment(ctx, student.ID, 1, 4, student.CreatedAt)

	req := testutil.AsManager(postForm("/grades/7th/delete/", url.Values{}))
	req = testutil.WithChiURLParam(req, "name", "7th")
	rec := httptest.NewRecorder()
	handler.HandleDeleteGrade(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	if _, err := gradestore.New(fixtures.DB()).GetByID(ctx, grade.ID); err != mongo.ErrNoDocuments {
		t.Errorf("expected grade gone, got err=%v", err)
	}
	for _, coll := range []string{"groups", "students", "assessments"} {
		n, err := fixtures.DB().Collection(coll).CountDocuments(ctx, map[string]any{})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("expected %s emptied by cascade, found %d", coll, n)
		}
	}

	rows, err := auditStore.ForEntity(ctx, audit.EntityGrade, grade.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(rows) != 1 || rows[0].Field != audit.FieldDeleted || rows[0].OldValue != "ז" {
		t.Fatalf("unexpected audit rows: %+v", rows)
	}
}

func TestHandleDeleteGrade_ViewerForbidden(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")

	req := testutil.AsViewer(postForm("/grades/7th/delete/", url.Values{}))
	req = testutil.WithChiURLParam(req, "name", "7th")
	rec := httptest.NewRecorder()
	handler.HandleDeleteGrade(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	if _, err := gradestore.New(fixtures.DB()).GetByID(ctx, grade.ID); err != nil {
		t.Errorf("expected grade kept, got err=%v", err)
	}
}
