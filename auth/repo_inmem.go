package auth

import (
	"context"
	"sync"
)

// accountRepository is the map-backed store used by tests. It enforces
// the same unique indexes the Mongo store declares so the race
// backstop behaves identically.
type accountRepository struct {
	mu       sync.RWMutex
	accounts map[ID]*Account
}

func NewAccountRepository() Repository {
	return &accountRepository{accounts: map[ID]*Account{}}
}

func (repo *accountRepository) Store(_ context.Context, acc *Account) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	for _, v := range repo.accounts {
		if v.Username == acc.Username || v.Email == acc.Email {
			return errDuplicateKey
		}
		if !v.NeedsProfileCompletion && !acc.NeedsProfileCompletion &&
			v.AdmissionNumber == acc.AdmissionNumber {
			return errDuplicateKey
		}
	}

	repo.accounts[acc.ID] = acc
	return nil
}

func (repo *accountRepository) FindByID(_ context.Context, id ID) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	if acc, ok := repo.accounts[id]; ok {
		return acc, nil
	}
	return nil, ErrNotFound
}

func (repo *accountRepository) FindByUsername(_ context.Context, username string) (*Account, error) {
	return repo.find(func(acc *Account) bool { return acc.Username == username })
}

func (repo *accountRepository) FindByEmail(_ context.Context, email string) (*Account, error) {
	return repo.find(func(acc *Account) bool { return acc.Email == email })
}

func (repo *accountRepository) FindByAdmissionNumber(_ context.Context, admissionNumber string) (*Account, error) {
	return repo.find(func(acc *Account) bool {
		return !acc.NeedsProfileCompletion && acc.AdmissionNumber == admissionNumber
	})
}

func (repo *accountRepository) FindConflict(_ context.Context, username, email, admissionNumber string) (*Account, error) {
	return repo.find(func(acc *Account) bool {
		if acc.Username == username || acc.Email == email {
			return true
		}
		return !acc.NeedsProfileCompletion && acc.AdmissionNumber == admissionNumber
	})
}

func (repo *accountRepository) CompleteProfile(_ context.Context, email, admissionNumber, hostel string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()

	var target *Account
	for _, v := range repo.accounts {
		if v.Email == email {
			target = v
			continue
		}
		if !v.NeedsProfileCompletion && v.AdmissionNumber == admissionNumber {
			return errDuplicateKey
		}
	}
	if target == nil {
		return ErrNotFound
	}

	target.AdmissionNumber = admissionNumber
	target.Hostel = hostel
	target.NeedsProfileCompletion = false
	return nil
}

func (repo *accountRepository) find(match func(*Account) bool) (*Account, error) {
	repo.mu.RLock()
	defer repo.mu.RUnlock()

	for _, v := range repo.accounts {
		if match(v) {
			return v, nil
		}
	}
	return nil, ErrNotFound
}
