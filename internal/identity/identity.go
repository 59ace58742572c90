package identity

import "context"

// User is the calling user as the identity collaborator knows them.
type User struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Provider resolves an authenticated caller ID to a user. The core never
// touches credentials; verification happens in the auth middleware.
type Provider interface {
	Resolve(ctx context.Context, id string) (*User, error)
}

// Static always returns a fixed user. Used in tests.
type Static struct {
	User User
}

func (s *Static) Resolve(ctx context.Context, id string) (*User, error) {
	u := s.User
	if u.ID == "" {
		u.ID = id
	}
	return &u, nil
}
