package types

// User is the session-facing identity of an authenticated account.
type User struct {
	// ID is the stable unique identifier assigned at sign-up.
	ID string `json:"id"`

	// Email is the address the account was registered under.
	Email string `json:"email"`
}

// UserRecord is a directory entry keyed by email. It is distinct from the
// session-facing User: the record additionally carries the stored credential.
type UserRecord struct {
	// ID is the stable unique identifier assigned at sign-up.
	ID string `json:"id"`

	// Email is the address the account was registered under. Email uniquely
	// determines identity in the directory.
	Email string `json:"email"`

	// PasswordHash stores the account credential. Depending on configuration
	// this is either a bcrypt hash or, for parity with the original mock
	// auth flow, the plain comparable form. Never exposed in API responses.
	PasswordHash string `json:"passwordHash"`
}
