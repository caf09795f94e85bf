package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", email, password)
}

func (c *HTTPClient) Register(ctx context.Context, email, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", email, password)
}

func (c *HTTPClient) authenticate(ctx context.Context, path, email, password string) (*AuthResponse, error) {
	raw, err := c.do(ctx, http.MethodPost, path, credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return parseAuthResponse("POST "+path, raw)
}

// authEnvelope covers the response shapes seen in the wild:
// {token|accessToken|data.token} and {user|data.user|profile}.
type authEnvelope struct {
	Token       string         `json:"token"`
	AccessToken string         `json:"accessToken"`
	Email       string         `json:"email"`
	User        map[string]any `json:"user"`
	Profile     map[string]any `json:"profile"`
	Data        *struct {
		Token string         `json:"token"`
		User  map[string]any `json:"user"`
	} `json:"data"`
}

func parseAuthResponse(endpoint string, raw []byte) (*AuthResponse, error) {
	if raw == nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: "empty response"}
	}
	var env authEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}

	res := &AuthResponse{Token: firstNonEmpty(env.Token, env.AccessToken)}
	user := env.User
	if env.Data != nil {
		if res.Token == "" {
			res.Token = env.Data.Token
		}
		if user == nil {
			user = env.Data.User
		}
	}
	if user == nil {
		user = env.Profile
	}

	res.User = AuthUser{Extra: map[string]any{}}
	for k, v := range user {
		switch k {
		case "id":
			res.User.ID = stringify(v)
		case "email":
			res.User.Email, _ = v.(string)
		default:
			res.User.Extra[k] = v
		}
	}
	if res.User.Email == "" {
		res.User.Email = env.Email
	}

	if err := res.validate(); err != nil {
		return nil, &ParseError{Endpoint: endpoint, Reason: err.Error()}
	}
	fillFromClaims(res)
	return res, nil
}

// fillFromClaims reads sub and email from a JWT token when the body left
// them out. The signature is not checked: the claims only label the local
// session, they grant nothing.
func fillFromClaims(res *AuthResponse) {
	if res.User.ID != "" && res.User.Email != "" {
		return
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(res.Token, claims); err != nil {
		return
	}
	if res.User.ID == "" {
		if sub, err := claims.GetSubject(); err == nil {
			res.User.ID = sub
		}
	}
	if res.User.Email == "" {
		if email, ok := claims["email"].(string); ok {
			res.User.Email = email
		}
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		b, _ := json.Marshal(t)
		return string(b)
	default:
		return ""
	}
}
