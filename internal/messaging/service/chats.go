package service

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"pulse/internal/messaging/models"
	dErrors "pulse/pkg/domain-errors"
	"pulse/pkg/requestcontext"
)

// ListChats returns the current user's direct conversations and groups as one
// list, most recently active first. Ties keep conversations ahead of groups
// so the merge is deterministic.
func (s *Service) ListChats(ctx context.Context) ([]*models.ChatView, error) {
	viewerID := requestcontext.UserID(ctx)

	convs, err := s.conversations.ListByUser(ctx, viewerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list conversations")
	}
	views, err := s.conversationViews(ctx, viewerID, convs)
	if err != nil {
		return nil, err
	}

	groups, err := s.groups.ListByMember(ctx, viewerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list groups")
	}
	if len(groups) > 0 {
		memberIDs := lo.Uniq(lo.Flatten(lo.Map(groups, func(g *models.Group, _ int) []string {
			return g.MemberIDs
		})))
		users, err := s.users.GetUsers(ctx, memberIDs)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			views = append(views, s.groupView(g, users))
		}
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].UpdatedAt.After(views[j].UpdatedAt)
	})
	return views, nil
}
