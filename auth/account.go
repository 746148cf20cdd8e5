package auth

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
	"time"

	"github.com/rs/xid"
	"golang.org/x/crypto/bcrypt"
)

// PendingAdmissionNumber is the sentinel held by accounts provisioned
// through an external identity provider until the owner completes
// their profile.
const PendingAdmissionNumber = "PENDING"

// DefaultHostel is assigned to provider-provisioned accounts until
// profile completion replaces it with the real one.
const DefaultHostel = "Aquamarine"

// Hostels is the fixed set of campus residences an account may belong to.
var Hostels = []string{
	"Aquamarine",
	"Sapphire",
	"Amber",
	"Topaz",
	"Diamond",
	"Jasper",
	"Ruby & Rosaline",
	"Emerald",
	"Opal",
	"International",
}

type ID string

// Account is a persisted user identity. Username, email and admission
// number are unique across accounts; the admission number only once it
// holds a real value rather than the pending sentinel.
type Account struct {
	ID                     ID
	Username               string
	Email                  string
	PasswordHash           string
	AdmissionNumber        string
	Hostel                 string
	NeedsProfileCompletion bool
	CreatedAt              time.Time
}

// IsPending reports whether the account still awaits profile completion.
func (a *Account) IsPending() bool {
	return a.NeedsProfileCompletion
}

var (
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
	emailRegexp    = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

	lowerRegexp   = regexp.MustCompile(`[a-z]`)
	upperRegexp   = regexp.MustCompile(`[A-Z]`)
	digitRegexp   = regexp.MustCompile(`[0-9]`)
	specialRegexp = regexp.MustCompile(`[\W_]`)
)

func validateUsername(s string) string {
	if !usernameRegexp.MatchString(s) {
		return "username must be 3-20 characters of letters, numbers and underscores"
	}
	return ""
}

func validateEmail(s string) string {
	if !emailRegexp.MatchString(s) {
		return "invalid email address"
	}
	return ""
}

func validatePassword(s string) string {
	switch {
	case len(s) < 8:
		return "password must be at least 8 characters long"
	case len(s) > 128:
		return "password must be at most 128 characters long"
	case !lowerRegexp.MatchString(s):
		return "password must contain at least one lowercase letter"
	case !upperRegexp.MatchString(s):
		return "password must contain at least one uppercase letter"
	case !digitRegexp.MatchString(s):
		return "password must contain at least one number"
	case !specialRegexp.MatchString(s):
		return "password must contain at least one special character"
	}
	return ""
}

func validateHostel(s string) string {
	for _, h := range Hostels {
		if s == h {
			return ""
		}
	}
	return "hostel must be one of the campus residences"
}

func validateAdmissionNumber(s string) string {
	if strings.TrimSpace(s) == "" {
		return "admission number is required"
	}
	return ""
}

// NewAccount builds a fully onboarded account from validated
// registration fields. The password hash is set by the caller.
func NewAccount(username, email, admissionNumber, hostel string) *Account {
	return &Account{
		ID:              NewID(),
		Username:        username,
		Email:           email,
		AdmissionNumber: admissionNumber,
		Hostel:          hostel,
		CreatedAt:       time.Now().UTC(),
	}
}

// NewExternalAccount builds a placeholder account for an identity
// confirmed by an external provider. It carries the pending admission
// sentinel, the default hostel and a password hash derived from random
// data that can never match a user-supplied password.
func NewExternalAccount(name, email string) (*Account, error) {
	hash, err := placeholderHash()
	if err != nil {
		return nil, err
	}

	return &Account{
		ID:                     NewID(),
		Username:               usernameFromProvider(name, email),
		Email:                  email,
		PasswordHash:           hash,
		AdmissionNumber:        PendingAdmissionNumber,
		Hostel:                 DefaultHostel,
		NeedsProfileCompletion: true,
		CreatedAt:              time.Now().UTC(),
	}, nil
}

// usernameFromProvider strips whitespace from the provider's display
// name, falling back to the email's local part when no name was given.
func usernameFromProvider(name, email string) string {
	u := strings.Join(strings.Fields(name), "")
	if u == "" {
		u = strings.SplitN(email, "@", 2)[0]
	}
	return u
}

func NewID() ID {
	return ID(xid.New().String())
}

func isValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}

// bcryptCost matches the cost factor the registration flow has always
// used for stored credentials.
const bcryptCost = 10

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func hashMatchesPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func placeholderHash() (string, error) {
	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hashPassword(hex.EncodeToString(b))
}
