package shopapi

import (
	"context"
	"strings"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
)

type LoginResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type ProfileUpdate struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password,omitempty"`
}

// Login exchanges credentials for a token and user. A response missing
// either is treated as a failed login.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResult, error) {
	var res LoginResult
	err := c.Post(ctx, "/auth/login", map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return LoginResult{}, err
	}
	if strings.TrimSpace(res.Token) == "" || res.User == nil {
		return LoginResult{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "Login failed. Please check your credentials.")
	}
	return res, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (User, error) {
	var res struct {
		Message string `json:"message"`
		User    *User  `json:"user"`
	}
	if err := c.Post(ctx, "/auth/register", req, &res); err != nil {
		return User{}, err
	}
	if res.User == nil {
		return User{}, pkgerrors.New(pkgerrors.CodeDependency, "Registration failed. Please try again.")
	}
	return *res.User, nil
}

func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	return c.Put(ctx, "/profile", update, nil)
}
