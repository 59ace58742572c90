package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"

	"momentumAPI/internal/apperr"
	"momentumAPI/internal/identity"
	"momentumAPI/internal/store"
	"momentumAPI/internal/types/group"
)

const (
	inviteCodeCharset  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	inviteCodeLength   = 6
	inviteCodeAttempts = 5
)

type GroupService struct {
	store store.Store
}

func NewGroupService(st store.Store) *GroupService {
	return &GroupService{store: st}
}

// ListGroups returns every group the user is a member of.
func (s *GroupService) ListGroups(ctx context.Context, userID string) ([]*group.Group, error) {
	memberDocs, err := s.store.List(ctx, store.MembersCollection, store.Eq(group.FieldUserID, userID))
	if err != nil {
		return nil, apperr.Store("listing memberships", err)
	}

	groups := []*group.Group{}
	for _, doc := range memberDocs {
		m, err := group.MembershipFromDocument(doc)
		if err != nil {
			return nil, apperr.Validationf("membership %s: %v", doc.ID, err)
		}

		groupDoc, err := s.store.Get(ctx, store.GroupsCollection, m.GroupID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// Dangling membership from a failed cascade; skip it.
				continue
			}
			return nil, apperr.Store("fetching group", err)
		}

		g, err := group.FromDocument(groupDoc)
		if err != nil {
			return nil, apperr.Validationf("group %s: %v", groupDoc.ID, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// CreateGroup creates an arena and enrolls the creator. If the creator
// membership cannot be written, the fresh group is deleted again so no
// memberless group is left behind.
func (s *GroupService) CreateGroup(ctx context.Context, caller *identity.User, name, activity string) (*group.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validationf("group name is required")
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		group.FieldName:       name,
		group.FieldInviteCode: code,
		group.FieldCreatorID:  caller.ID,
		group.FieldActivity:   strings.TrimSpace(activity),
	}

	groupDoc, err := s.store.Create(ctx, store.GroupsCollection, "", fields)
	if err != nil {
		return nil, apperr.Store("creating group", err)
	}

	if err := s.addMember(ctx, groupDoc.ID, caller); err != nil {
		if delErr := s.store.Delete(ctx, store.GroupsCollection, groupDoc.ID); delErr != nil {
			return nil, apperr.Store(fmt.Sprintf("enrolling creator (orphaned group %s left behind)", groupDoc.ID), err)
		}
		return nil, apperr.Store("enrolling creator", err)
	}

	g, err := group.FromDocument(groupDoc)
	if err != nil {
		return nil, apperr.Validationf("group %s: %v", groupDoc.ID, err)
	}
	return g, nil
}

// JoinGroup enrolls the caller in the group matching the invite code.
func (s *GroupService) JoinGroup(ctx context.Context, caller *identity.User, inviteCode string) (*group.Group, error) {
	code := strings.ToUpper(strings.TrimSpace(inviteCode))
	if code == "" {
		return nil, apperr.Validationf("invite code is required")
	}

	groupDocs, err := s.store.List(ctx, store.GroupsCollection, store.Eq(group.FieldInviteCode, code))
	if err != nil {
		return nil, apperr.Store("looking up invite code", err)
	}
	if len(groupDocs) == 0 {
		return nil, apperr.NotFoundf("invalid invite code")
	}

	g, err := group.FromDocument(groupDocs[0])
	if err != nil {
		return nil, apperr.Validationf("group %s: %v", groupDocs[0].ID, err)
	}

	existing, err := s.store.List(ctx, store.MembersCollection,
		store.Eq(group.FieldGroupID, g.ID),
		store.Eq(group.FieldUserID, caller.ID),
	)
	if err != nil {
		return nil, apperr.Store("checking membership", err)
	}
	if len(existing) > 0 {
		return nil, apperr.Conflictf("already a member of %s", g.Name)
	}

	if err := s.addMember(ctx, g.ID, caller); err != nil {
		return nil, apperr.Store("joining group", err)
	}
	return g, nil
}

// LeaveGroup removes the caller's own membership.
func (s *GroupService) LeaveGroup(ctx context.Context, userID, groupID string) error {
	memberDocs, err := s.store.List(ctx, store.MembersCollection,
		store.Eq(group.FieldGroupID, groupID),
		store.Eq(group.FieldUserID, userID),
	)
	if err != nil {
		return apperr.Store("looking up membership", err)
	}
	if len(memberDocs) == 0 {
		return apperr.NotFoundf("membership in group %s", groupID)
	}

	if err := s.store.Delete(ctx, store.MembersCollection, memberDocs[0].ID); err != nil {
		return apperr.Store("leaving group", err)
	}
	return nil
}

// DeleteGroup removes a group and all its memberships. Only the creator
// may delete. On a mid-cascade failure the operation stops and reports a
// single store error; callers re-fetch authoritative state on the next
// list.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	groupDoc, err := s.store.Get(ctx, store.GroupsCollection, groupID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFoundf("group %s", groupID)
		}
		return apperr.Store("fetching group", err)
	}

	g, err := group.FromDocument(groupDoc)
	if err != nil {
		return apperr.Validationf("group %s: %v", groupDoc.ID, err)
	}
	if g.CreatorID != userID {
		return apperr.Permissionf("only the creator can delete this arena")
	}

	memberDocs, err := s.store.List(ctx, store.MembersCollection, store.Eq(group.FieldGroupID, groupID))
	if err != nil {
		return apperr.Store("listing members for cascade", err)
	}

	for i, doc := range memberDocs {
		if err := s.store.Delete(ctx, store.MembersCollection, doc.ID); err != nil {
			return apperr.Store(
				fmt.Sprintf("cascade incomplete: removed %d of %d memberships", i, len(memberDocs)), err)
		}
	}

	if err := s.store.Delete(ctx, store.GroupsCollection, groupID); err != nil {
		return apperr.Store("cascade incomplete: memberships removed, group remains", err)
	}
	return nil
}

func (s *GroupService) addMember(ctx context.Context, groupID string, caller *identity.User) error {
	fields := map[string]any{
		group.FieldGroupID:  groupID,
		group.FieldUserID:   caller.ID,
		group.FieldUserName: caller.DisplayName,
	}
	_, err := s.store.Create(ctx, store.MembersCollection, "", fields)
	return err
}

// uniqueInviteCode generates a short human-typable code and verifies it
// is not in use, retrying a few times before giving up.
func (s *GroupService) uniqueInviteCode(ctx context.Context) (string, error) {
	for range inviteCodeAttempts {
		code, err := randomInviteCode()
		if err != nil {
			return "", apperr.Store("generating invite code", err)
		}

		existing, err := s.store.List(ctx, store.GroupsCollection, store.Eq(group.FieldInviteCode, code))
		if err != nil {
			return "", apperr.Store("checking invite code", err)
		}
		if len(existing) == 0 {
			return code, nil
		}
	}
	return "", apperr.Conflictf("could not allocate a unique invite code")
}

func randomInviteCode() (string, error) {
	buf := make([]byte, inviteCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = inviteCodeCharset[int(b)%len(inviteCodeCharset)]
	}
	return string(buf), nil
}
