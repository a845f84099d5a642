package tests

import (
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/user"
	emailsvc "github.com/trezcool/darasa/services/email"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_userApi_register(t *testing.T) {
	app := setup(t)

	testutil.CreateUser(t, usrRepo, "Jane Poe", "taken@test.cd", "", user.RoleTeacher)

	payload := func(name, email, role, pwd, pwdConf string) []byte {
		return marchallObj(t, user.NewUser{
			FullName:        name,
			Email:           email,
			Role:            role,
			Password:        pwd,
			PasswordConfirm: pwdConf,
		})
	}

	tests := []httpTest{
		{
			name: "missing fields", body: payload("", "", "", "", ""),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"full_name": "this field is required",
				"email":     "this field is required",
				"role":      "this field is required",
				// struct-level password policy runs after "required" and wins the map slot
				"password":         "password must contain at least 8 characters",
				"password_confirm": "this field is required",
			}),
		},
		{
			name: "invalid role", body: payload("John Doe", "john@test.cd", "principal", "L0l$Lol1", "L0l$Lol1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"role": "invalid role"}),
		},
		{
			name: "password mismatch", body: payload("John Doe", "john@test.cd", user.RoleStudent, "L0l$Lol1", "L0l$Lol2"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"password_confirm": "password_confirm must be equal to Password"}),
		},
		{
			name: "weak password", body: payload("John Doe", "john@test.cd", user.RoleStudent, "password", "password"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
			}),
		},
		{
			name: "duplicate email", body: payload("John Doe", "taken@test.cd", user.RoleStudent, "L0l$Lol1", "L0l$Lol1"),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"email": "a user with this email already exists"}),
		},
		{
			name: "teacher registered", body: payload("John Doe", "john@test.cd", user.RoleTeacher, "L0l$Lol1", "L0l$Lol1"),
			wantCode: http.StatusCreated,
		},
		{
			name: "student registered", body: payload("Jill Doe", "jill@test.cd", user.RoleStudent, "L0l$Lol1", "L0l$Lol1"),
			wantCode: http.StatusCreated,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/register", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			// created: response carries the persisted user without the password hash
			var usr user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &usr); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if usr.ID == "" {
				t.Error("registered user has no ID")
			}
			if usr.PasswordHash != nil {
				t.Error("password hash leaked in response")
			}
		})
	}
}

func Test_userApi_login(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Poe", "jane@test.cd", "L0l$Lol1", user.RoleTeacher)

	payload := func(email, pwd string) []byte {
		return marchallObj(t, echoapi.LoginRequest{Email: email, Password: pwd})
	}

	tests := []httpTest{
		{
			name: "unknown email", body: payload("lol@test.cd", "L0l$Lol1"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", body: payload("jane@test.cd", "L0l$Lol2"),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "email is case-insensitive", body: payload("JANE@test.cd", "L0l$Lol1"),
			wantCode: http.StatusOK,
		},
		{name: "ok", body: payload("jane@test.cd", "L0l$Lol1"), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantData != nil {
				checkCodeAndData(t, tt, rec)
				return
			}

			var res echoapi.LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if res.Token == "" {
				t.Fatal("no token returned")
			}

			// token grants access to /users/me
			req, rec = newAuthRequest(http.MethodGet, "/v1/users/me", res.Token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Fatalf("GET /users/me code = %v; body = %s", rec.Code, rec.Body.String())
			}
			var me user.User
			if err := json.Unmarshal(rec.Body.Bytes(), &me); err != nil {
				t.Fatalf("unmarshalling response: %v", err)
			}
			if me.ID != usr.ID {
				t.Errorf("me.ID = %v; want %v", me.ID, usr.ID)
			}
		})
	}
}

func Test_userApi_me_requiresAuth(t *testing.T) {
	app := setup(t)

	tt := httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}
	req, rec := newRequest(http.MethodGet, "/v1/users/me")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, tt, rec)
}

func Test_userApi_passwordReset(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Poe", "jane@test.cd", "L0l$Lol1", user.RoleStudent)

	// request a reset; the mail service mock is synchronous
	sentBefore := len(emailsvc.SentMessages)
	body := marchallObj(t, echoapi.PasswordResetRequest{Email: usr.Email})
	req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset code = %v; body = %s", rec.Code, rec.Body.String())
	}
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Fatal("no password reset email sent")
	}

	// an unknown email gets the same response and no email
	body = marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset (unknown email) code = %v", rec.Code)
	}
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Fatal("email sent for unknown address")
	}

	// pull uid & token out of the emailed link
	mail := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	linkRegex := regexp.MustCompile(`/password-reset/([^/\s]+)/([^/\s]+)`)
	match := linkRegex.FindStringSubmatch(mail.TextContent)
	if match == nil {
		t.Fatalf("no reset link in email body: %q", mail.TextContent)
	}
	uid, token := match[1], match[2]

	// confirm with a bad token
	body = marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: "bad-token", Password: "N3w$Pass1", PasswordConfirm: "N3w$Pass1",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("password-reset-confirm (bad token) code = %v", rec.Code)
	}

	// confirm with the real token
	body = marchallObj(t, user.ResetUserPassword{
		UID: uid, Token: token, Password: "N3w$Pass1", PasswordConfirm: "N3w$Pass1",
	})
	req, rec = newRequest(http.MethodPost, "/v1/users/password-reset-confirm", body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset-confirm code = %v; body = %s", rec.Code, rec.Body.String())
	}

	// the old password no longer works, the new one does
	refreshed, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
	if err != nil {
		t.Fatalf("GetUser(): %v", err)
	}
	if err = refreshed.CheckPassword("L0l$Lol1"); err == nil {
		t.Error("old password still valid")
	}
	if err = refreshed.CheckPassword("N3w$Pass1"); err != nil {
		t.Error("new password not set")
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	app := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Poe", "jane@test.cd", "L0l$Lol1", user.RoleTeacher)
	token := getToken(t, usr)

	req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("token-refresh code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var res echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if res.Token == "" {
		t.Fatal("no token returned")
	}
}
