package group

import (
	"fmt"

	"momentumAPI/internal/store"
)

// Group is a named arena of users competing on a shared leaderboard,
// optionally scoped to one activity name.
type Group struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	InviteCode string `json:"invite_code"`
	CreatorID  string `json:"creator_id"`
	Activity   string `json:"activity"`
}

// Membership links one user to one group. The display name is
// denormalized at join time so the leaderboard never needs a user lookup.
type Membership struct {
	ID       string `json:"id"`
	GroupID  string `json:"group_id"`
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}

const (
	FieldName       = "name"
	FieldInviteCode = "inviteCode"
	FieldCreatorID  = "creatorId"
	FieldActivity   = "activity"

	FieldGroupID  = "groupId"
	FieldUserID   = "userId"
	FieldUserName = "userName"
)

func FromDocument(doc store.Document) (*Group, error) {
	g := &Group{ID: doc.ID}
	var err error

	if g.Name, err = stringField(doc.Fields, FieldName); err != nil {
		return nil, err
	}
	if g.InviteCode, err = stringField(doc.Fields, FieldInviteCode); err != nil {
		return nil, err
	}
	if g.CreatorID, err = stringField(doc.Fields, FieldCreatorID); err != nil {
		return nil, err
	}
	g.Activity, _ = doc.Fields[FieldActivity].(string)
	return g, nil
}

func MembershipFromDocument(doc store.Document) (*Membership, error) {
	m := &Membership{ID: doc.ID}
	var err error

	if m.GroupID, err = stringField(doc.Fields, FieldGroupID); err != nil {
		return nil, err
	}
	if m.UserID, err = stringField(doc.Fields, FieldUserID); err != nil {
		return nil, err
	}
	m.UserName, _ = doc.Fields[FieldUserName].(string)
	return m, nil
}

func stringField(fields map[string]any, name string) (string, error) {
	v, ok := fields[name]
	if !ok {
		return "", fmt.Errorf("field %s is missing", name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %s is not a string", name)
	}
	return s, nil
}
