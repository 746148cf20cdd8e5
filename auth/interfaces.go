package auth

import "context"

type Service interface {
	Register(ctx context.Context, req registerRequest) (ID, error)
	Authenticate(ctx context.Context, req loginRequest) (Claims, error)
	ExternalSignIn(ctx context.Context, identity ExternalIdentity) (SignInResult, error)
	CompleteProfile(ctx context.Context, req completeProfileRequest) error
	UsernameAvailable(ctx context.Context, username string) error
	EmailAvailable(ctx context.Context, email string) error
}

type Repository interface {
	FindByID(ctx context.Context, id ID) (*Account, error)
	FindByUsername(ctx context.Context, username string) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*Account, error)
	// FindConflict returns any account holding the given username,
	// email or admission number.
	FindConflict(ctx context.Context, username, email, admissionNumber string) (*Account, error)
	Store(ctx context.Context, acc *Account) error
	// CompleteProfile sets the admission number and hostel of the
	// account matched by email and clears its pending flag.
	CompleteProfile(ctx context.Context, email, admissionNumber, hostel string) error
}

// ExternalIdentity is what an identity provider hands us after it has
// verified the user: an email and, sometimes, a display name. The
// provider's credentials never reach this package.
type ExternalIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignInResult is the outcome of an external-identity sign-in. A
// pending account redirects to profile completion instead of receiving
// a session.
type SignInResult struct {
	Claims          Claims
	NeedsCompletion bool
	Email           string
}

type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	AdmissionNumber string `json:"admissionNumber"`
	Hostel          string `json:"hostel"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type completeProfileRequest struct {
	Email           string `json:"email"`
	AdmissionNumber string `json:"admissionNumber"`
	Hostel          string `json:"hostel"`
}
