package items

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"

	"github.com/campusconnect/server/auth"
)

func TestCreateItemHandler_StampsOwnerFromSession(t *testing.T) {
	svc, repo := newTestService()
	issuer := auth.NewTokenIssuer([]byte("secret"))
	token, err := issuer.Issue(auth.Claims{ID: "u1", Username: "alice1"})
	assert.NoError(t, err)

	handler := issuer.RequireAuth(CreateItemHandler(svc))
	body := `{"title":"Blue bottle","description":"left at the library","category":"Bottles",` +
		`"location":"Main Library","date":"2026-02-10T00:00:00Z","time":"14:30","item":"Lost"}`

	r := httptest.NewRequest(http.MethodPost, "/v1/items", strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		ID ID `json:"id"`
	}
	assert.NoError(t, json.NewDecoder(w.Body).Decode(&res))

	item, err := repo.FindByID(r.Context(), res.ID)
	assert.NoError(t, err)
	assert.Equal(t, "u1", item.UserID)
}

func TestCreateItemHandler_RejectsAnonymous(t *testing.T) {
	svc, _ := newTestService()
	issuer := auth.NewTokenIssuer([]byte("secret"))
	handler := issuer.RequireAuth(CreateItemHandler(svc))

	r := httptest.NewRequest(http.MethodPost, "/v1/items", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetItemHandler(t *testing.T) {
	svc, _ := newTestService()
	id, err := svc.CreateItem(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "u1", postingFor(10))
	assert.NoError(t, err)

	router := httprouter.New()
	router.Handler(http.MethodGet, "/v1/items/:id", GetItemHandler(svc))

	tests := []struct {
		target   string
		wantCode int
	}{
		{"/v1/items/" + string(id), http.StatusOK},
		{"/v1/items/missing", http.StatusNotFound},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, tt.target, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, r)
		assert.Equal(t, tt.wantCode, w.Code, tt.target)
	}
}
