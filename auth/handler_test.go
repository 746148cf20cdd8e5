package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRegisterHandler(t *testing.T) {
	registerReq := `{"username":"alice1","email":"a@u.edu","password":"Abcdef1!","admissionNumber":"A100","hostel":"Opal"}`
	invalidHostelReq := `{"username":"bob22","email":"b@u.edu","password":"Abcdef1!","admissionNumber":"B200","hostel":"Hogwarts"}`
	existingEmailReq := `{"username":"bob22","email":"a@u.edu","password":"Abcdef1!","admissionNumber":"B200","hostel":"Opal"}`

	svc, _ := newTestService()
	handler := RegisterHandler(svc)

	tests := []struct {
		name, req string
		wantCode  int
		wantID    bool
	}{
		{"malformed body", `not json`, http.StatusBadRequest, false},
		{"invalid hostel", invalidHostelReq, http.StatusUnprocessableEntity, false},
		{"success", registerReq, http.StatusCreated, true},
		{"existing email", existingEmailReq, http.StatusConflict, false},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(tt.req))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		var res struct {
			ID  ID     `json:"id,omitempty"`
			Err string `json:"error,omitempty"`
		}
		_ = json.NewDecoder(w.Body).Decode(&res)

		assert.Equal(t, tt.wantCode, w.Code, tt.name)
		assert.Equal(t, tt.wantID, isValidID(string(res.ID)), tt.name)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		if tt.wantID {
			assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/v1/auth/register/"))
		}
	}
}

func TestLoginHandler(t *testing.T) {
	svc, _ := newTestService()
	issuer := NewTokenIssuer([]byte("secret"))
	register := RegisterHandler(svc)
	login := LoginHandler(svc, issuer)

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"username":"alice1","email":"a@u.edu","password":"Abcdef1!","admissionNumber":"A100","hostel":"Opal"}`))
	register.ServeHTTP(httptest.NewRecorder(), r)

	tests := []struct {
		name, req string
		wantCode  int
		wantToken bool
	}{
		{"wrong password", `{"email":"a@u.edu","password":"Wrong1!aa"}`, http.StatusUnauthorized, false},
		{"unknown email", `{"email":"ghost@u.edu","password":"Abcdef1!"}`, http.StatusUnauthorized, false},
		{"success", `{"email":"a@u.edu","password":"Abcdef1!"}`, http.StatusOK, true},
	}

	var errBodies []string
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(tt.req))
		w := httptest.NewRecorder()
		login.ServeHTTP(w, r)

		assert.Equal(t, tt.wantCode, w.Code, tt.name)

		if tt.wantToken {
			var res struct {
				Token string `json:"token"`
			}
			assert.NoError(t, json.NewDecoder(w.Body).Decode(&res))

			claims, ok := issuer.Parse(res.Token)
			assert.True(t, ok)
			assert.Equal(t, "alice1", claims.Username)
			assert.Equal(t, "a@u.edu", claims.Email)
			assert.Equal(t, "A100", claims.AdmissionNumber)
			assert.Equal(t, "Opal", claims.Hostel)
		} else {
			errBodies = append(errBodies, w.Body.String())
		}
	}

	// Wrong password and unknown email are indistinguishable.
	assert.Equal(t, errBodies[0], errBodies[1])
}

func TestExternalSignInHandler(t *testing.T) {
	svc, _ := newTestService()
	issuer := NewTokenIssuer([]byte("secret"))
	handler := ExternalSignInHandler(svc, issuer)

	r := httptest.NewRequest(http.MethodPost, "/v1/auth/external",
		strings.NewReader(`{"email":"b@u.edu","name":"Bob Mark"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var res struct {
		Redirect string `json:"redirect"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&res))
	assert.Equal(t, "/complete-profile?email=b%40u.edu", res.Redirect)

	// Completing the profile upgrades the next sign-in to a session.
	complete := CompleteProfileHandler(svc)
	r = httptest.NewRequest(http.MethodPost, "/v1/auth/complete-profile",
		strings.NewReader(`{"email":"b@u.edu","admissionNumber":"B200","hostel":"Ruby & Rosaline"}`))
	w = httptest.NewRecorder()
	complete.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)

	r = httptest.NewRequest(http.MethodPost, "/v1/auth/external",
		strings.NewReader(`{"email":"b@u.edu","name":"Bob Mark"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	var tokenRes struct {
		Token string `json:"token"`
	}
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&tokenRes))

	claims, ok := issuer.Parse(tokenRes.Token)
	assert.True(t, ok)
	assert.Equal(t, "BobMark", claims.Username)
	assert.Equal(t, "B200", claims.AdmissionNumber)
	assert.Equal(t, "Ruby & Rosaline", claims.Hostel)
}

func TestCompleteProfileHandler(t *testing.T) {
	svc, _ := newTestService()
	handler := CompleteProfileHandler(svc)

	tests := []struct {
		name, req string
		wantCode  int
	}{
		{"malformed body", `not json`, http.StatusBadRequest},
		{"missing fields", `{"email":"b@u.edu"}`, http.StatusBadRequest},
		{"unknown account", `{"email":"ghost@u.edu","admissionNumber":"B200","hostel":"Opal"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodPost, "/v1/auth/complete-profile", strings.NewReader(tt.req))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		assert.Equal(t, tt.wantCode, w.Code, tt.name)
	}
}

func TestCheckHandlers(t *testing.T) {
	accounts := NewAccountRepository()
	svc := NewService(accounts, zap.NewNop().Sugar())

	register := RegisterHandler(svc)
	r := httptest.NewRequest(http.MethodPost, "/v1/auth/register",
		strings.NewReader(`{"username":"alice1","email":"a@u.edu","password":"Abcdef1!","admissionNumber":"A100","hostel":"Opal"}`))
	register.ServeHTTP(httptest.NewRecorder(), r)

	tests := []struct {
		name, target string
		handler      http.Handler
		wantCode     int
	}{
		{"username taken", "/v1/auth/check-username?username=alice1", CheckUsernameHandler(svc), http.StatusConflict},
		{"username free", "/v1/auth/check-username?username=bob22", CheckUsernameHandler(svc), http.StatusOK},
		{"username invalid", "/v1/auth/check-username?username=x", CheckUsernameHandler(svc), http.StatusUnprocessableEntity},
		{"email taken", "/v1/auth/check-email?email=a%40u.edu", CheckEmailHandler(svc), http.StatusConflict},
		{"email free", "/v1/auth/check-email?email=b%40u.edu", CheckEmailHandler(svc), http.StatusOK},
		{"email invalid", "/v1/auth/check-email?email=nope", CheckEmailHandler(svc), http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.target, nil)
		w := httptest.NewRecorder()
		tt.handler.ServeHTTP(w, r)
		assert.Equal(t, tt.wantCode, w.Code, tt.name)
	}
}
