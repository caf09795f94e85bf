package models

// LocalUser is a user record of the local credential store. The JSON layout
// is the persisted one and must stay stable.
type LocalUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	// CreatedAt is an RFC 3339 timestamp.
	CreatedAt string `json:"createdAt"`
}

// PublicUser is the part of a user record that leaves the store.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}
