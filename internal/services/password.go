package services

import "golang.org/x/crypto/bcrypt"

// PasswordScheme seals a password for directory storage and verifies a
// login attempt against the stored form.
type PasswordScheme interface {
	Seal(password string) (string, error)
	Verify(stored, password string) bool
}

// PlainScheme stores the credential in plain comparable form and matches by
// direct equality. This mirrors the original mock auth flow; it is a known
// weakness kept for behavioral parity and should not be used where real
// credentials are at stake.
type PlainScheme struct{}

func (PlainScheme) Seal(password string) (string, error) {
	return password, nil
}

func (PlainScheme) Verify(stored, password string) bool {
	return stored == password
}

// BcryptScheme stores a bcrypt hash of the credential. Opt-in via config.
type BcryptScheme struct{}

func (BcryptScheme) Seal(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptScheme) Verify(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}
