package clients

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// AuthAPI is the authentication surface of the storefront API.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error)
	Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*domain.User, error)
}

type authHTTPClient struct {
	client *Client
	log    *logrus.Logger
}

func NewAuthHTTPClient(client *Client, logger *logrus.Logger) AuthAPI {
	return &authHTTPClient{client: client, log: logger}
}

func (c *authHTTPClient) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	c.log.Debugf("AuthClient: logging in as %s", creds.Email)
	var resp domain.AuthResponse
	if err := c.client.Do(ctx, http.MethodPost, "/login", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *authHTTPClient) Register(ctx context.Context, creds domain.RegisterCredentials) (*domain.AuthResponse, error) {
	c.log.Debugf("AuthClient: registering %s", creds.Email)
	var resp domain.AuthResponse
	if err := c.client.Do(ctx, http.MethodPost, "/register", creds, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *authHTTPClient) Logout(ctx context.Context) error {
	c.log.Debug("AuthClient: logging out")
	return c.client.Do(ctx, http.MethodPost, "/logout", nil, nil)
}

func (c *authHTTPClient) CurrentUser(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.client.Do(ctx, http.MethodGet, "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
