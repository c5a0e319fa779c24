package services

// Fixed keys in the shared store namespace. The three record kinds live side
// by side in one key-value namespace; each key's value is always rewritten
// wholesale.
const (
	// UsersKey holds the user directory: a mapping from email to UserRecord.
	UsersKey = "trendai-users-db"

	// SessionKey holds the single active session User, or is absent when
	// signed out.
	SessionKey = "trendai-user-session"

	// GalleryKey holds the ordered list of saved GeneratedImage records.
	GalleryKey = "trendai-gallery"
)
