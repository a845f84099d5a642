package tests

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	. "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/classroom"
	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/user"
)

// Test_api_endToEnd walks the happy path: a teacher registers and opens
// a class, a student registers and joins with the shared code, the
// teacher posts an assignment and the student turns in a file.
func Test_api_endToEnd(t *testing.T) {
	app := setup(t)

	register := func(name, email, role string) {
		t.Helper()
		payload := marchallObj(t, user.NewUser{
			FullName:        name,
			Email:           email,
			Role:            role,
			Password:        "G0od#pass",
			PasswordConfirm: "G0od#pass",
		})
		req, rec := newRequest(http.MethodPost, "/v1/users/register", payload)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("register %s: code = %v; body = %s", email, rec.Code, rec.Body.String())
		}
	}

	login := func(email string) string {
		t.Helper()
		payload := marchallObj(t, LoginRequest{Email: email, Password: "G0od#pass"})
		req, rec := newRequest(http.MethodPost, "/v1/users/login", payload)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("login %s: code = %v; body = %s", email, rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshalling login response: %v", err)
		}
		return resp.Token
	}

	register("Ms Grace", "grace@test.cd", user.RoleTeacher)
	register("John Doe", "john@test.cd", user.RoleStudent)
	teacherToken := login("grace@test.cd")
	studentToken := login("john@test.cd")

	// teacher opens a class
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", teacherToken,
		marchallObj(t, classroom.NewClass{Title: "Algebra II", Room: "B12"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create class: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var class classroom.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &class); err != nil {
		t.Fatalf("unmarshalling class: %v", err)
	}
	if len(class.Code) != classroom.CodeLen {
		t.Fatalf("class.Code = %q; want %d chars", class.Code, classroom.CodeLen)
	}

	// student joins with the code as shared, lowercase and all
	req, rec = newAuthRequest(http.MethodPost, "/v1/classes/join", studentToken,
		marchallObj(t, classroom.JoinClass{Code: strings.ToLower(class.Code)}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("join class: code = %v; body = %s", rec.Code, rec.Body.String())
	}

	// the class now shows on the student's dashboard
	req, rec = newAuthRequest(http.MethodGet, "/v1/classes", studentToken)
	app.ServeHTTP(rec, req)
	var classes []classroom.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &classes); err != nil {
		t.Fatalf("unmarshalling classes: %v", err)
	}
	if len(classes) != 1 || classes[0].ID != class.ID {
		t.Fatalf("student dashboard = %+v; want [%s]", classes, class.ID)
	}

	// teacher posts an assignment
	req, rec = newAuthRequest(http.MethodPost, "/v1/classes/"+class.ID+"/assignments", teacherToken,
		marchallObj(t, content.NewAssignment{Title: "Problem set 1", DueDate: "2026-09-15"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create assignment: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var assignment content.Assignment
	if err := json.Unmarshal(rec.Body.Bytes(), &assignment); err != nil {
		t.Fatalf("unmarshalling assignment: %v", err)
	}

	// student turns in a file
	req, rec = newUploadRequest(t, "/v1/assignments/"+assignment.ID+"/submissions",
		studentToken, "here you go", "pset1.pdf", []byte("%PDF-1.4 ..."))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var sub content.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("unmarshalling submission: %v", err)
	}
	if sub.FilePath == "" || files.Contents(sub.FilePath) == nil {
		t.Errorf("submission file %q was not stored", sub.FilePath)
	}

	// and the teacher sees it in the grading view
	req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+assignment.ID+"/submissions", teacherToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list submissions: code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var subs []content.Submission
	if err := json.Unmarshal(rec.Body.Bytes(), &subs); err != nil {
		t.Fatalf("unmarshalling submissions: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != sub.ID {
		t.Errorf("grading view = %+v; want [%s]", subs, sub.ID)
	}
}
