package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

type service struct {
	accounts Repository
	logger   *zap.SugaredLogger
}

func NewService(accounts Repository, logger *zap.SugaredLogger) Service {
	return &service{accounts: accounts, logger: logger}
}

func (svc *service) Register(ctx context.Context, req registerRequest) (ID, error) {
	ve := newValidationError()
	ve.add("username", validateUsername(req.Username))
	ve.add("email", validateEmail(req.Email))
	ve.add("password", validatePassword(req.Password))
	ve.add("admissionNumber", validateAdmissionNumber(req.AdmissionNumber))
	ve.add("hostel", validateHostel(req.Hostel))
	if err := ve.orNil(); err != nil {
		return "", err
	}

	existing, err := svc.accounts.FindConflict(ctx, req.Username, req.Email, req.AdmissionNumber)
	if err != nil && !errors.Is(err, ErrNotFound) {
		svc.logger.Errorw("registration conflict lookup failed", "error", err)
		return "", ErrServiceUnavailable
	}
	if existing != nil {
		return "", ErrAccountExists
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		svc.logger.Errorw("password hashing failed", "error", err)
		return "", ErrServiceUnavailable
	}

	acc := NewAccount(req.Username, req.Email, req.AdmissionNumber, req.Hostel)
	acc.PasswordHash = hash

	if err := svc.accounts.Store(ctx, acc); err != nil {
		// The unique index, not the pre-check above, decides races.
		if errors.Is(err, errDuplicateKey) {
			return "", ErrAccountExists
		}
		svc.logger.Errorw("storing account failed", "email", req.Email, "error", err)
		return "", ErrServiceUnavailable
	}

	svc.logger.Infow("account registered", "id", acc.ID, "username", acc.Username)
	return acc.ID, nil
}

func (svc *service) Authenticate(ctx context.Context, req loginRequest) (Claims, error) {
	if req.Email == "" || req.Password == "" {
		return Claims{}, ErrInvalidCredentials
	}

	acc, err := svc.accounts.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			svc.logger.Infow("sign-in for unknown email", "email", req.Email)
			return Claims{}, ErrInvalidCredentials
		}
		svc.logger.Errorw("sign-in lookup failed", "error", err)
		return Claims{}, ErrServiceUnavailable
	}

	// Accounts provisioned by an identity provider carry a random
	// placeholder hash until profile completion; they have no password
	// a caller could know.
	if acc.IsPending() || acc.PasswordHash == "" {
		svc.logger.Infow("credential sign-in on external-only account", "email", req.Email)
		return Claims{}, ErrExternalAccountOnly
	}

	if !hashMatchesPassword(acc.PasswordHash, req.Password) {
		svc.logger.Infow("sign-in with wrong password", "email", req.Email)
		return Claims{}, ErrInvalidCredentials
	}

	return claimsFromAccount(acc), nil
}

func (svc *service) ExternalSignIn(ctx context.Context, identity ExternalIdentity) (SignInResult, error) {
	if identity.Email == "" {
		return SignInResult{}, ErrMissingFields
	}

	acc, err := svc.accounts.FindByEmail(ctx, identity.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			svc.logger.Errorw("external sign-in lookup failed", "error", err)
			return SignInResult{}, ErrServiceUnavailable
		}

		acc, err = NewExternalAccount(identity.Name, identity.Email)
		if err != nil {
			svc.logger.Errorw("placeholder account construction failed", "error", err)
			return SignInResult{}, ErrServiceUnavailable
		}

		if err := svc.accounts.Store(ctx, acc); err != nil {
			// A losing racer or a derived-username collision aborts
			// the sign-in; nothing partial is left behind.
			if errors.Is(err, errDuplicateKey) {
				svc.logger.Infow("placeholder account collided", "email", identity.Email)
				return SignInResult{}, ErrAccountExists
			}
			svc.logger.Errorw("storing placeholder account failed", "email", identity.Email, "error", err)
			return SignInResult{}, ErrServiceUnavailable
		}
		svc.logger.Infow("placeholder account provisioned", "id", acc.ID, "username", acc.Username)
	}

	if acc.IsPending() {
		return SignInResult{NeedsCompletion: true, Email: acc.Email}, nil
	}

	return SignInResult{Claims: claimsFromAccount(acc)}, nil
}

func (svc *service) CompleteProfile(ctx context.Context, req completeProfileRequest) error {
	if req.Email == "" || req.AdmissionNumber == "" || req.Hostel == "" {
		return ErrMissingFields
	}

	ve := newValidationError()
	ve.add("hostel", validateHostel(req.Hostel))
	if err := ve.orNil(); err != nil {
		return err
	}

	holder, err := svc.accounts.FindByAdmissionNumber(ctx, req.AdmissionNumber)
	if err != nil && !errors.Is(err, ErrNotFound) {
		svc.logger.Errorw("admission number lookup failed", "error", err)
		return ErrServiceUnavailable
	}
	if holder != nil && holder.Email != req.Email {
		return ErrExistingAdmission
	}

	if err := svc.accounts.CompleteProfile(ctx, req.Email, req.AdmissionNumber, req.Hostel); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return ErrNotFound
		case errors.Is(err, errDuplicateKey):
			return ErrExistingAdmission
		}
		svc.logger.Errorw("profile completion failed", "email", req.Email, "error", err)
		return ErrServiceUnavailable
	}

	svc.logger.Infow("profile completed", "email", req.Email)
	return nil
}

func (svc *service) UsernameAvailable(ctx context.Context, username string) error {
	ve := newValidationError()
	ve.add("username", validateUsername(username))
	if err := ve.orNil(); err != nil {
		return err
	}

	if _, err := svc.accounts.FindByUsername(ctx, username); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		svc.logger.Errorw("username availability lookup failed", "error", err)
		return ErrServiceUnavailable
	}
	return ErrExistingUsername
}

func (svc *service) EmailAvailable(ctx context.Context, email string) error {
	ve := newValidationError()
	ve.add("email", validateEmail(email))
	if err := ve.orNil(); err != nil {
		return err
	}

	if _, err := svc.accounts.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		svc.logger.Errorw("email availability lookup failed", "error", err)
		return ErrServiceUnavailable
	}
	return ErrExistingEmail
}
