package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the public subset of an account embedded in a session
// token. It is a snapshot taken at sign-in, not re-read per request.
type Claims struct {
	ID              string `json:"id"`
	Username        string `json:"username"`
	Email           string `json:"email"`
	AdmissionNumber string `json:"admissionNumber"`
	Hostel          string `json:"hostel"`
}

func claimsFromAccount(acc *Account) Claims {
	return Claims{
		ID:              string(acc.ID),
		Username:        acc.Username,
		Email:           acc.Email,
		AdmissionNumber: acc.AdmissionNumber,
		Hostel:          acc.Hostel,
	}
}

type sessionClaims struct {
	Claims
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies the stateless HS256 session tokens.
type TokenIssuer struct {
	signingKey []byte
}

func NewTokenIssuer(signingKey []byte) *TokenIssuer {
	return &TokenIssuer{signingKey: signingKey}
}

func (t *TokenIssuer) Issue(c Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		Claims:           c,
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "campusconnect", Subject: c.ID},
	})
	return token.SignedString(t.signingKey)
}

// Parse returns the claims carried by a token. An unparseable or
// badly signed token is simply not a session, never a hard failure.
func (t *TokenIssuer) Parse(tokenString string) (Claims, bool) {
	sc := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, sc, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return t.signingKey, nil
	})
	if err != nil || !token.Valid {
		return Claims{}, false
	}
	return sc.Claims, true
}

type contextKey int

const claimsKey contextKey = 0

// RequireAuth rejects requests without a valid bearer token and makes
// the token's claims available through ClaimsFromContext.
func (t *TokenIssuer) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		claims, ok := t.Parse(raw)
		if raw == "" || !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// ClaimsFromContext returns the authenticated caller's claims, if any.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(Claims)
	return claims, ok
}
