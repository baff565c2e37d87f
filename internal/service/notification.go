package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/stemcapstone/smartgoals/internal/lifecycle"
	"github.com/stemcapstone/smartgoals/internal/markdown"
	"github.com/stemcapstone/smartgoals/internal/repository"
)

// NotificationService emails goal owners about reviews and achievements.
type NotificationService struct {
	users    repository.UserRepository
	email    *EmailService
	markdown *markdown.Parser
}

func NewNotificationService(users repository.UserRepository, email *EmailService, md *markdown.Parser) *NotificationService {
	return &NotificationService{
		users:    users,
		email:    email,
		markdown: md,
	}
}

func (s *NotificationService) Notify(ctx context.Context, n lifecycle.Notice) error {
	owner, err := s.users.ByID(ctx, n.OwnerID)
	if err != nil {
		return fmt.Errorf("failed to load goal owner: %w", err)
	}

	switch n.Kind {
	case lifecycle.NoticeApproved, lifecycle.NoticeRejected:
		feedbackHTML, err := s.markdown.HTML(n.Feedback)
		if err != nil {
			slog.Warn("failed to render feedback, sending plain text only", "error", err, "goal_id", n.GoalID)
			feedbackHTML = ""
		}
		return s.email.SendGoalReviewedEmail(ctx, owner.Email, owner.Name, n.GoalID, n.GoalTitle, string(n.Kind), n.Feedback, feedbackHTML)
	case lifecycle.NoticeAchieved:
		return s.email.SendGoalAchievedEmail(ctx, owner.Email, owner.Name, n.GoalID, n.GoalTitle)
	default:
		return fmt.Errorf("unknown notice kind %q", n.Kind)
	}
}
