package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/clerk/clerk-sdk-go/v2/user"
)

// ClerkProvider resolves users through the Clerk Backend API. The global
// Clerk key must be set before use (clerk.SetKey in main).
type ClerkProvider struct{}

func NewClerkProvider() *ClerkProvider {
	return &ClerkProvider{}
}

func (p *ClerkProvider) Resolve(ctx context.Context, id string) (*User, error) {
	usr, err := user.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user %s: %w", id, err)
	}

	name := ""
	if usr.Username != nil {
		name = *usr.Username
	}
	if name == "" {
		parts := []string{}
		if usr.FirstName != nil && *usr.FirstName != "" {
			parts = append(parts, *usr.FirstName)
		}
		if usr.LastName != nil && *usr.LastName != "" {
			parts = append(parts, *usr.LastName)
		}
		name = strings.Join(parts, " ")
	}
	if name == "" {
		name = id
	}

	return &User{ID: id, DisplayName: name}, nil
}
