package ws

import (
	"context"
	"fmt"
	"net/http"

	"github.com/custodia-labs/glaximini/internal/core/domain"
)

// Authenticator resolves the identity claimed in a login message.
type Authenticator interface {
	Authenticate(ctx context.Context, r *http.Request, claimed domain.User) (domain.User, error)
}

// TrustingAuthenticator accepts any positive user id as is. It is meant for
// deployments behind a proxy that already authenticated the user.
type TrustingAuthenticator struct{}

// Ensure TrustingAuthenticator implements the interface.
var _ Authenticator = TrustingAuthenticator{}

// Authenticate returns claimed unless its id is missing.
func (TrustingAuthenticator) Authenticate(_ context.Context, _ *http.Request, claimed domain.User) (domain.User, error) {
	if claimed.ID <= 0 {
		return domain.User{}, fmt.Errorf("%w: user id %d", domain.ErrInvalidInput, claimed.ID)
	}
	if claimed.Name == "" {
		claimed.Name = fmt.Sprintf("User %d", claimed.ID)
	}
	return claimed, nil
}
