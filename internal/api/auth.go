package api

import (
	"context"
	"fmt"

	"github.com/bitsandpieces/bitstui/internal/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a token. A 2xx response without a token
// field is an error; nothing silently authenticates.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, "POST", "/login/", loginRequest{Username: username, Password: password}, &resp); err != nil {
		return session.Session{}, err
	}
	if resp.Token == "" {
		return session.Session{}, fmt.Errorf("login response carried no token")
	}
	sess := session.Session{Token: resp.Token, Username: username}
	c.SetSession(sess)
	return sess, nil
}

// Register creates an account and logs it in.
func (c *Client) Register(ctx context.Context, username, email, password string) (session.Session, error) {
	var resp tokenResponse
	if err := c.do(ctx, "POST", "/register/", registerRequest{Username: username, Email: email, Password: password}, &resp); err != nil {
		return session.Session{}, err
	}
	if resp.Token == "" {
		return session.Session{}, fmt.Errorf("register response carried no token")
	}
	sess := session.Session{Token: resp.Token, Username: username}
	c.SetSession(sess)
	return sess, nil
}
