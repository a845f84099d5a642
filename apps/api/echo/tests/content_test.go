package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/trezcool/darasa/core/content"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_contentApi_announcements(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Ms Grace", "grace@test.cd", "", user.RoleTeacher)
	member := testutil.CreateUser(t, usrRepo, "John Doe", "john@test.cd", "", user.RoleStudent)
	stranger := testutil.CreateUser(t, usrRepo, "Jill Poe", "jill@test.cd", "", user.RoleStudent)

	class := testutil.CreateClass(t, classRepo, "Algebra II", "ALG123", teacher)
	testutil.Enroll(t, classRepo, class, member)

	payload := marchallObj(t, content.NewAnnouncement{Title: "Exam Friday", Content: "Chapters 1 through 4."})
	path := "/v1/classes/" + class.ID + "/announcements"

	tests := []httpTest{
		{
			name: "auth required", method: http.MethodPost, body: payload,
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "non-member cannot post", method: http.MethodPost, body: payload, token: getToken(t, stranger),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you do not have access to this class"}),
		},
		{
			name: "missing fields", method: http.MethodPost, body: marchallObj(t, content.NewAnnouncement{}), token: getToken(t, teacher),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is required", "content": "this field is required"}),
		},
		{name: "teacher posts", method: http.MethodPost, body: payload, token: getToken(t, teacher), wantCode: http.StatusCreated},
		{name: "enrolled student posts", method: http.MethodPost, body: payload, token: getToken(t, member), wantCode: http.StatusCreated},
		{
			name: "non-member cannot list", method: http.MethodGet, token: getToken(t, stranger),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you do not have access to this class"}),
		},
		{name: "member lists", method: http.MethodGet, token: getToken(t, member), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			if tt.method == http.MethodGet {
				var anns []content.Announcement
				if err := json.Unmarshal(rec.Body.Bytes(), &anns); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if len(anns) != 2 {
					t.Errorf("len(anns) = %d; want 2", len(anns))
				}
				return
			}

			var ann content.Announcement
			if err := json.Unmarshal(rec.Body.Bytes(), &ann); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if ann.ClassID != class.ID {
				t.Errorf("ann.ClassID = %v; want %v", ann.ClassID, class.ID)
			}
			if ann.AuthorName == "" {
				t.Error("announcement has no author name")
			}
		})
	}
}

func Test_contentApi_assignments(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Ms Grace", "grace@test.cd", "", user.RoleTeacher)
	other := testutil.CreateUser(t, usrRepo, "Mr Omar", "omar@test.cd", "", user.RoleTeacher)
	member := testutil.CreateUser(t, usrRepo, "John Doe", "john@test.cd", "", user.RoleStudent)

	class := testutil.CreateClass(t, classRepo, "Algebra II", "ALG123", teacher)
	testutil.Enroll(t, classRepo, class, member)

	points := 100
	payload := marchallObj(t, content.NewAssignment{
		Title:   "Problem set 3",
		DueDate: "2026-09-15",
		Points:  &points,
		Type:    "homework",
	})
	path := "/v1/classes/" + class.ID + "/assignments"

	tests := []httpTest{
		{
			name: "students cannot create", method: http.MethodPost, body: payload, token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "non-owning teacher denied", method: http.MethodPost, body: payload, token: getToken(t, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you do not have access to this class"}),
		},
		{
			name: "negative points", method: http.MethodPost, token: getToken(t, teacher),
			body:     []byte(`{"title":"Quiz","points":-5}`),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"points": "points must be 0 or greater"}),
		},
		{name: "created", method: http.MethodPost, body: payload, token: getToken(t, teacher), wantCode: http.StatusCreated},
		{name: "member lists", method: http.MethodGet, token: getToken(t, member), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			if tt.method == http.MethodGet {
				var asgs []content.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &asgs); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if len(asgs) != 1 {
					t.Fatalf("len(asgs) = %d; want 1", len(asgs))
				}

				// detail endpoint honors the same membership rule
				req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+asgs[0].ID, getToken(t, member))
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusOK {
					t.Errorf("GET /assignments/:id code = %v", rec.Code)
				}
				req, rec = newAuthRequest(http.MethodGet, "/v1/assignments/"+asgs[0].ID, getToken(t, other))
				app.ServeHTTP(rec, req)
				if rec.Code != http.StatusForbidden {
					t.Errorf("GET /assignments/:id (non-member) code = %v; want 403", rec.Code)
				}
				return
			}

			var a content.Assignment
			if err := json.Unmarshal(rec.Body.Bytes(), &a); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if a.ClassID != class.ID {
				t.Errorf("a.ClassID = %v; want %v", a.ClassID, class.ID)
			}
			if a.Points == nil || *a.Points != points {
				t.Errorf("a.Points = %v; want %d", a.Points, points)
			}
		})
	}
}

func Test_contentApi_submissions(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Ms Grace", "grace@test.cd", "", user.RoleTeacher)
	member := testutil.CreateUser(t, usrRepo, "John Doe", "john@test.cd", "", user.RoleStudent)
	stranger := testutil.CreateUser(t, usrRepo, "Jill Poe", "jill@test.cd", "", user.RoleStudent)

	class := testutil.CreateClass(t, classRepo, "Algebra II", "ALG123", teacher)
	testutil.Enroll(t, classRepo, class, member)
	assignment := testutil.CreateAssignment(t, contentRepo, class, "Problem set 3", "2026-09-15")

	path := "/v1/assignments/" + assignment.ID + "/submissions"

	t.Run("teachers cannot submit", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, getToken(t, teacher), "done", "", nil)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("unenrolled student denied", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, getToken(t, stranger), "done", "", nil)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}
	})

	t.Run("no submission yet", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path+"/me", getToken(t, member))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "submission not found"})}, rec)
	})

	t.Run("disallowed file is dropped, comment kept", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, getToken(t, member), "my essay", "hack.exe", []byte("MZ..."))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var sub content.Submission
		if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if sub.FilePath != "" {
			t.Errorf("sub.FilePath = %q; want empty", sub.FilePath)
		}
		if sub.Comment != "my essay" {
			t.Errorf("sub.Comment = %q; want %q", sub.Comment, "my essay")
		}
		if sub.Status != content.StatusTurnedIn {
			t.Errorf("sub.Status = %q; want %q", sub.Status, content.StatusTurnedIn)
		}
	})

	t.Run("double submission rejected", func(t *testing.T) {
		req, rec := newUploadRequest(t, path, getToken(t, member), "again", "", nil)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusConflict {
			t.Errorf("code = %v; want 409; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("allowed file is stored under a namespaced name", func(t *testing.T) {
		// fresh student, fresh submission
		second := testutil.CreateUser(t, usrRepo, "Amy Poe", "amy@test.cd", "", user.RoleStudent)
		testutil.Enroll(t, classRepo, class, second)

		fileContent := []byte("%PDF-1.4 ...")
		req, rec := newUploadRequest(t, path, getToken(t, second), "", "home work.pdf", fileContent)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}

		var sub content.Submission
		if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		wantName := content.StoredName(second.ID, assignment.ID, "home work.pdf")
		if sub.FilePath != wantName {
			t.Errorf("sub.FilePath = %q; want %q", sub.FilePath, wantName)
		}
		if got := files.Contents(wantName); !bytes.Equal(got, fileContent) {
			t.Errorf("stored file = %q; want %q", got, fileContent)
		}

		// the student can fetch their own submission back
		req, rec = newAuthRequest(http.MethodGet, path+"/me", getToken(t, second))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /submissions/me code = %v", rec.Code)
		}
		var mine content.Submission
		if err := json.Unmarshal(rec.Body.Bytes(), &mine); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if mine.ID != sub.ID {
			t.Errorf("mine.ID = %v; want %v", mine.ID, sub.ID)
		}
	})

	t.Run("grading view is teachers only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, member))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %v; want 403", rec.Code)
		}

		req, rec = newAuthRequest(http.MethodGet, path, getToken(t, teacher))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var subs []content.Submission
		if err := json.Unmarshal(rec.Body.Bytes(), &subs); err != nil {
			t.Fatalf("unmarshalling response: %v", err)
		}
		if len(subs) != 2 {
			t.Errorf("len(subs) = %d; want 2", len(subs))
		}
	})
}

func Test_contentApi_comments(t *testing.T) {
	app := setup(t)

	teacher := testutil.CreateUser(t, usrRepo, "Ms Grace", "grace@test.cd", "", user.RoleTeacher)
	member := testutil.CreateUser(t, usrRepo, "John Doe", "john@test.cd", "", user.RoleStudent)
	stranger := testutil.CreateUser(t, usrRepo, "Jill Poe", "jill@test.cd", "", user.RoleStudent)

	class := testutil.CreateClass(t, classRepo, "Algebra II", "ALG123", teacher)
	testutil.Enroll(t, classRepo, class, member)
	ann := testutil.CreateAnnouncement(t, contentRepo, class, teacher, "Exam Friday", "Chapters 1 through 4.")

	path := "/v1/announcements/" + ann.ID + "/comments"
	payload := marchallObj(t, content.NewComment{Content: "Will it cover chapter 5?"})

	tests := []httpTest{
		{
			name: "non-member cannot comment", method: http.MethodPost, body: payload, token: getToken(t, stranger),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "you do not have access to this class"}),
		},
		{
			name: "content required", method: http.MethodPost, body: marchallObj(t, content.NewComment{}), token: getToken(t, member),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"content": "this field is required"}),
		},
		{name: "member comments", method: http.MethodPost, body: payload, token: getToken(t, member), wantCode: http.StatusCreated},
		{name: "teacher comments", method: http.MethodPost, body: payload, token: getToken(t, teacher), wantCode: http.StatusCreated},
		{name: "member lists", method: http.MethodGet, token: getToken(t, member), wantCode: http.StatusOK},
		{
			name: "unknown announcement", method: http.MethodGet, path: "/v1/announcements/lol/comments", token: getToken(t, member),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "announcement not found"}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := path
			if tt.path != "" {
				p = tt.path
			}
			req, rec := newAuthRequest(tt.method, p, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			if tt.method == http.MethodGet {
				var cmts []content.Comment
				if err := json.Unmarshal(rec.Body.Bytes(), &cmts); err != nil {
					t.Fatalf("unmarshalling response: %v", err)
				}
				if len(cmts) != 2 {
					t.Errorf("len(cmts) = %d; want 2", len(cmts))
				}
				return
			}

			var cmt content.Comment
			if err := json.Unmarshal(rec.Body.Bytes(), &cmt); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if cmt.AnnouncementID != ann.ID {
				t.Errorf("cmt.AnnouncementID = %v; want %v", cmt.AnnouncementID, ann.ID)
			}
			if cmt.AuthorName == "" {
				t.Error("comment has no author name")
			}
		})
	}
}
