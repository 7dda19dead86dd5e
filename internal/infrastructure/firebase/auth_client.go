package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"ragestate/pkg/errors"
)

// AuthClient wraps the Firebase Admin auth client. Tokens are verified
// per request; the service never trusts cached client-side auth state.
type AuthClient struct {
	client *auth.Client
}

func NewAuthClient(client *auth.Client) *AuthClient {
	return &AuthClient{
		client: client,
	}
}

func (c *AuthClient) VerifyToken(ctx context.Context, idToken string) (string, error) {
	token, err := c.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", errors.Unauthorized("Invalid or expired token", err)
	}
	return token.UID, nil
}

// TestConnection probes the Admin SDK with a lookup that is expected to
// miss. A user-not-found answer still proves the connection works.
func (c *AuthClient) TestConnection(ctx context.Context) error {
	_, err := c.client.GetUser(ctx, "connection-probe")
	if err != nil && !auth.IsUserNotFound(err) {
		return err
	}
	return nil
}
