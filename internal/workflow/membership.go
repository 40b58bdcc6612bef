package workflow

import (
	"context"

	"taskflow/internal/domain"
	"taskflow/internal/model"

	"github.com/google/uuid"
)

// MembershipDiff is the result of reconciling a roster change.
type MembershipDiff struct {
	Added   []uuid.UUID
	Removed []uuid.UUID
}

// diffMembers computes added/removed sets between the old and new rosters.
func diffMembers(old, updated []uuid.UUID) MembershipDiff {
	oldSet := make(map[uuid.UUID]bool, len(old))
	for _, id := range old {
		oldSet[id] = true
	}
	newSet := make(map[uuid.UUID]bool, len(updated))
	for _, id := range updated {
		newSet[id] = true
	}

	var diff MembershipDiff
	for _, id := range updated {
		if !oldSet[id] {
			diff.Added = append(diff.Added, id)
		}
	}
	for _, id := range old {
		if !newSet[id] {
			diff.Removed = append(diff.Removed, id)
		}
	}
	return diff
}

// resolveMembers resolves a proposed roster against the user collection and
// forces the lead manager into it. Any unresolved id rejects the whole
// roster; nothing is partially applied.
func (s *Service) resolveMembers(ctx context.Context, memberIDs []uuid.UUID, leadID uuid.UUID) ([]model.User, error) {
	unique := make([]uuid.UUID, 0, len(memberIDs))
	seen := make(map[uuid.UUID]bool, len(memberIDs))
	for _, id := range memberIDs {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}

	members, err := s.users.FindByIDs(ctx, unique)
	if err != nil {
		return nil, err
	}
	if len(members) != len(unique) {
		return nil, domain.Errorf(domain.ErrInvalidTeamMember, "one or more specified team members are invalid")
	}

	if !seen[leadID] {
		lead, err := s.users.GetByID(ctx, leadID)
		if err != nil {
			return nil, err
		}
		if lead == nil {
			return nil, domain.Errorf(domain.ErrInvalidTeamMember, "lead manager %s does not exist", leadID)
		}
		members = append(members, *lead)
	}

	return members, nil
}

func memberIDsOf(members []model.User) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	return ids
}
