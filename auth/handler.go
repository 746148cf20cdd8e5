package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

func RegisterHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req registerRequest
		if err := decodeRequest(r.Body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		id, err := svc.Register(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		w.Header().Set("Location", fmt.Sprintf("%s/%s", r.URL.Path, id))
		w.WriteHeader(http.StatusCreated)
		encodeResponse(w, map[string]interface{}{"id": id, "message": "registration successful"})
	})
}

func LoginHandler(svc Service, issuer *TokenIssuer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req loginRequest
		if err := decodeRequest(r.Body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		claims, err := svc.Authenticate(r.Context(), req)
		if err != nil {
			encodeError(err, w)
			return
		}

		token, err := issuer.Issue(claims)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		encodeResponse(w, map[string]interface{}{"token": token})
	})
}

// ExternalSignInHandler finishes a sign-in the identity provider has
// already verified. A pending account is redirected to profile
// completion instead of receiving a session.
func ExternalSignInHandler(svc Service, issuer *TokenIssuer) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var identity ExternalIdentity
		if err := decodeRequest(r.Body, &identity); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		result, err := svc.ExternalSignIn(r.Context(), identity)
		if err != nil {
			encodeError(err, w)
			return
		}

		if result.NeedsCompletion {
			encodeResponse(w, map[string]interface{}{
				"redirect": "/complete-profile?email=" + url.QueryEscape(result.Email),
			})
			return
		}

		token, err := issuer.Issue(result.Claims)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		encodeResponse(w, map[string]interface{}{"token": token})
	})
}

func CompleteProfileHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		var req completeProfileRequest
		if err := decodeRequest(r.Body, &req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if err := svc.CompleteProfile(r.Context(), req); err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, map[string]interface{}{"message": "profile updated successfully"})
	})
}

func CheckUsernameHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.UsernameAvailable(r.Context(), r.URL.Query().Get("username")); err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, map[string]interface{}{"message": "username is available"})
	})
}

func CheckEmailHandler(svc Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := svc.EmailAvailable(r.Context(), r.URL.Query().Get("email")); err != nil {
			encodeError(err, w)
			return
		}
		encodeResponse(w, map[string]interface{}{"message": "email is available"})
	})
}

// SessionHandler echoes the authenticated caller's claims. Mounted
// behind RequireAuth.
func SessionHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		encodeResponse(w, claims)
	})
}

func decodeRequest(body io.ReadCloser, v interface{}) error {
	return json.NewDecoder(body).Decode(v)
}

func encodeResponse(w http.ResponseWriter, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func encodeError(err error, w http.ResponseWriter) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		w.WriteHeader(http.StatusUnprocessableEntity)
		if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
			"error":  err.Error(),
			"fields": ve.Fields,
		}); encErr != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
		return
	case errors.Is(err, ErrMissingFields):
		w.WriteHeader(http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrExternalAccountOnly):
		w.WriteHeader(http.StatusUnauthorized)
	case errors.Is(err, ErrNotFound):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, ErrAccountExists), errors.Is(err, ErrExistingUsername),
		errors.Is(err, ErrExistingEmail), errors.Is(err, ErrExistingAdmission):
		w.WriteHeader(http.StatusConflict)
	case errors.Is(err, ErrServiceUnavailable):
		w.WriteHeader(http.StatusServiceUnavailable)
	default:
		w.WriteHeader(http.StatusInternalServerError)
	}

	if encErr := json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
	}); encErr != nil {
		w.WriteHeader(http.StatusInternalServerError)
	}
}
