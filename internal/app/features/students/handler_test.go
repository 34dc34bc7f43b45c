package students_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"testing"

	uierrors "github.com/arikst/schoolhub/internal/app/features/errors"
	"github.com/arikst/schoolhub/internal/app/features/students"
	"github.com/arikst/schoolhub/internal/app/store/audit"
	studentstore "github.com/arikst/schoolhub/internal/app/store/students"
	"github.com/arikst/schoolhub/internal/app/system/auditlog"
	"github.com/arikst/schoolhub/internal/app/system/imagestore"
	"github.com/arikst/schoolhub/internal/domain/models"
	"github.com/arikst/schoolhub/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*students.Handler, *testutil.Fixtures, *audit.Store) {
	t.Helper()
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	auditStore := audit.New(db)
	logger := auditlog.New(auditStore, zap.NewNop(), auditlog.Config{Mode: "db"})
	handler := students.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), logger, nil, zap.NewNop())
	return handler, testutil.NewFixtures(t, db), auditStore
}

func postForm(target string, values url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postMultipart(t *testing.T, target string, fields url.Values, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for key, vals := range fields {
		for _, v := range vals {
			if err := mw.WriteField(key, v); err != nil {
				t.Fatalf("write field %s: %v", key, err)
			}
		}
	}
	fw, err := mw.CreateFormFile("profile_image", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandleCreateStudent_ManagerCreatesAndAudits(t *testing.T) {
	handler, fixtures, auditStore := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Levi")
	form.Set("id_number", "123456789")
	form.Set("grade_id", grade.ID.Hex())
	form.Set("group_id", group.ID.Hex())

	req := testutil.AsManager(postForm("/student/add/", form))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	var created models.Student
	err := fixtures.DB().Collection("students").
		FindOne(ctx, map[string]any{"id_number": "123456789"}).Decode(&created)
	if err != nil {
		t.Fatalf("expected student persisted: %v", err)
	}
	if created.GroupID == nil || *created.GroupID != group.ID {
		t.Errorf("expected student assigned to group")
	}
	if !strings.Contains(rec.Header().Get("Location"), created.ID.Hex()) {
		t.Errorf("expected redirect to the new profile, got %q", rec.Header().Get("Location"))
	}

	rows, err := auditStore.ForEntity(ctx, audit.EntityStudent, created.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(rows))
	}
	if rows[0].Field != audit.FieldCreated {
		t.Errorf("expected created audit row, got field %q", rows[0].Field)
	}
	if rows[0].NewValue != "Dana Levi" {
		t.Errorf("expected new value %q, got %q", "Dana Levi", rows[0].NewValue)
	}
	if rows[0].User != "Test Manager" {
		t.Errorf("expected actor %q, got %q", "Test Manager", rows[0].User)
	}
}

func TestHandleCreateStudent_ViewerForbidden(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Levi")
	form.Set("id_number", "123456789")

	req := testutil.AsViewer(postForm("/student/add/", form))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
	}
	n, err := fixtures.DB().Collection("students").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no student written, found %d", n)
	}
}

func TestHandleCreateStudent_InvalidIDNumber_NoWrite(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Levi")
	form.Set("id_number", "12345")

	req := testutil.AsManager(postForm("/student/add/", form))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "9 digits") {
		t.Errorf("expected validation message in page")
	}
	// Submitted values echo back.
	if !strings.Contains(body, `value="Dana"`) {
		t.Errorf("expected first name echoed in form")
	}
	n, err := fixtures.DB().Collection("students").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no student written, found %d", n)
	}
}

func TestHandleCreateStudent_ReportsEveryInvalidField(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{}
	form.Set("first_name", "")
	form.Set("last_name", "")
	form.Set("id_number", "12")
	form.Set("phone", "12345")
	form.Set("birth_date", "31-12-2010")

	req := testutil.AsManager(postForm("/student/add/", form))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"First name is required.",
		"Last name is required.",
		"ID number must be exactly 9 digits.",
		"Phone must be 10 digits starting with 0.",
		"Birth date must be YYYY-MM-DD.",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in page", want)
		}
	}
	n, err := fixtures.DB().Collection("students").CountDocuments(ctx, map[string]any{})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no student written, found %d", n)
	}
}

func TestHandleCreateStudent_GroupFromOtherGrade_Rejected(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	gradeZ := fixtures.CreateGrade(ctx, "ז")
	gradeH := fixtures.CreateGrade(ctx, "ח")
	groupH := fixtures.CreateGroup(ctx, "ח-1", gradeH.ID)

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Levi")
	form.Set("id_number", "123456789")
	form.Set("grade_id", gradeZ.ID.Hex())
	form.Set("group_id", groupH.ID.Hex())

	req := testutil.AsManager(postForm("/student/add/", form))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "does not belong") {
		t.Errorf("expected mismatched group message in page")
	}
}

func TestHandleCreateStudent_DuplicateID_RemovesSavedImage(t *testing.T) {
	testutil.BootTemplates(t)
	db := testutil.SetupTestDB(t)
	fixtures := testutil.NewFixtures(t, db)

	images, err := imagestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("imagestore.New: %v", err)
	}
	auditStore := audit.New(db)
	logger := auditlog.New(auditStore, zap.NewNop(), auditlog.Config{Mode: "db"})
	handler := students.NewHandler(db, uierrors.NewErrorLogger(zap.NewNop()), logger, images, zap.NewNop())

	ctx, cancel := testutil.TestContext()
	defer cancel()
	fixtures.CreateUnassignedStudent(ctx, "Dana", "Levi", "123456789")

	form := url.Values{}
	form.Set("first_name", "Noa")
	form.Set("last_name", "Cohen")
	form.Set("id_number", "123456789")

	req := testutil.AsManager(postMultipart(t, "/student/add/", form, "portrait.jpg", []byte("fake image bytes")))
	rec := httptest.NewRecorder()
	handler.HandleCreateStudent(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected form re-render, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "already exists") {
		t.Errorf("expected duplicate ID message in page")
	}

	// The image stored before the failed insert must not linger on disk.
	entries, err := os.ReadDir(images.Dir())
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected upload dir emptied after failed create, found %d files", len(entries))
	}
}

func TestHandleEditStudent_AuditsOnlyChangedTrackedFields(t *testing.T) {
	handler, fixtures, auditStore := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "123456789", grade.ID, group.ID)

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Mizrahi") // changed
	form.Set("id_number", "123456789")
	form.Set("phone", "0501234567") // untracked
	form.Set("grade_id", grade.ID.Hex())
	form.Set("group_id", group.ID.Hex())

	req := testutil.AsManager(postForm("/student/"+student.ID.Hex()+"/edit/", form))
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleEditStudent(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	updated, err := studentstore.New(fixtures.DB()).GetByID(ctx, student.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if updated.LastName != "Mizrahi" {
		t.Errorf("expected last name updated, got %q", updated.LastName)
	}
	if updated.Phone != "0501234567" {
		t.Errorf("expected phone updated, got %q", updated.Phone)
	}

	rows, err := auditStore.ForEntity(ctx, audit.EntityStudent, student.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row (last_name only), got %d", len(rows))
	}
	if rows[0].Field != "last_name" || rows[0].OldValue != "Levi" || rows[0].NewValue != "Mizrahi" {
		t.Errorf("unexpected audit row: %+v", rows[0])
	}
}

func TestHandleEditStudent_GroupChangeAuditedByName(t *testing.T) {
	handler, fixtures, auditStore := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group1 := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	group2 := fixtures.CreateGroup(ctx, "ז-2", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "123456789", grade.ID, group1.ID)

	form := url.Values{}
	form.Set("first_name", "Dana")
	form.Set("last_name", "Levi")
	form.Set("id_number", "123456789")
	form.Set("grade_id", grade.ID.Hex())
	form.Set("group_id", group2.ID.Hex())

	req := testutil.AsManager(postForm("/student/"+student.ID.Hex()+"/edit/", form))
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleEditStudent(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	rows, err := auditStore.ForEntity(ctx, audit.EntityStudent, student.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(rows))
	}
	if rows[0].Field != "group" || rows[0].OldValue != "ז-1" || rows[0].NewValue != "ז-2" {
		t.Errorf("unexpected audit row: %+v", rows[0])
	}
}

func TestHandleDeleteStudent_CascadesAndAudits(t *testing.T) {
	handler, fixtures, auditStore := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "123456789", grade.ID, group.ID)
	fixtures.CreateAssessment(ctx, student.ID, 1, 4, student.CreatedAt)
	fixtures.CreateAttendance(ctx, student.ID, student.CreatedAt, models.AttendancePresent)

	req := testutil.AsManager(postForm("/student/"+student.ID.Hex()+"/delete/", url.Values{}))
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := httptest.NewRecorder()
	handler.HandleDeleteStudent(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
	}

	_, err := studentstore.New(fixtures.DB()).GetByID(ctx, student.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected student gone, got err=%v", err)
	}
	for _, coll := range []string{"assessments", "attendance"} {
		n, err := fixtures.DB().Collection(coll).
			CountDocuments(ctx, map[string]any{"student_id": student.ID})
		if err != nil {
			t.Fatalf("count %s: %v", coll, err)
		}
		if n != 0 {
			t.Errorf("expected %s cascade-deleted, found %d", coll, n)
		}
	}

	rows, err := auditStore.ForEntity(ctx, audit.EntityStudent, student.ID.Hex(), 0)
	if err != nil {
		t.Fatalf("ForEntity: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 audit row, got %d", len(rows))
	}
	if rows[0].Field != audit.FieldDeleted || rows[0].OldValue != "Dana Levi" {
		t.Errorf("unexpected audit row: %+v", rows[0])
	}
}

func TestServeStudentsList_SearchAcrossSchool(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	fixtures.CreateStudent(ctx, "Dana", "Levi", "111111111", grade.ID, group.ID)
	fixtures.CreateUnassignedStudent(ctx, "Noa", "Cohen", "222222222")

	req := httptest.NewRequest("GET", "/students/?search=coh", nil)
	rec := httptest.NewRecorder()
	handler.ServeStudentsList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Cohen") {
		t.Errorf("expected Cohen in results")
	}
	if strings.Contains(body, "Levi") {
		t.Errorf("expected Levi filtered out")
	}
}

func TestServeStudentView_ShowsHistoryAndRecords(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "123456789", grade.ID, group.ID)
	fixtures.CreateAssessment(ctx, student.ID, 2, 3.5, student.CreatedAt)
	fixtures.CreateAuditEntry(ctx, audit.EntityStudent, student.ID.Hex(), "last_name", "Old", "Levi", "Test Manager")

	req := testutil.AsViewer(httptest.NewRequest("GET", "/student/"+student.ID.Hex()+"/", nil))
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := httptest.NewRecorder()
	handler.ServeStudentView(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Dana", "Levi", "123456789", "ז-1", "3.5", "last_name", "Test Manager"} {
		if !strings.Contains(body, want) {
			t.Errorf("expected %q in profile page", want)
		}
	}
}

func TestServeStudentView_AnonymousUnauthorized(t *testing.T) {
	handler, fixtures, _ := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	grade := fixtures.CreateGrade(ctx, "ז")
	group := fixtures.CreateGroup(ctx, "ז-1", grade.ID)
	student := fixtures.CreateStudent(ctx, "Dana", "Levi", "123456789", grade.ID, group.ID)

	req := httptest.NewRequest("GET", "/student/"+student.ID.Hex()+"/", nil)
	req = testutil.WithChiURLParam(req, "id", student.ID.Hex())
	rec := httptest.NewRecorder()
	handler.ServeStudentView(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}
