package common

// Persisted-state keys shared by the client components.
const (
	KeyUsers       = "auth_users"
	KeyAuthToken   = "auth_token"
	KeyAuthEmail   = "auth_email"
	KeyAuthUserID  = "auth_user_id"
	KeyPosterCache = "available_posters_v2"
	KeyShuffleSeed = "shuffle_seed"
)

// AuthorizationHeaderName carries the bearer token on outbound API requests.
const AuthorizationHeaderName = "Authorization"

// LoginPath is the sign-in view protected views redirect to.
const LoginPath = "/auth/login"
