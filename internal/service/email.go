package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

// NewEmailService sends through resend. In development, or without an API
// key, emails are only logged.
func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

type email struct {
	kind    string
	to      string
	subject string
	text    string
	html    string
}

func (s *EmailService) send(ctx context.Context, e email) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", e.kind, "to", e.to, "subject", e.subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{e.to},
		Subject: e.subject,
		Text:    e.text,
		Html:    e.html,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", e.kind, err)
	}

	slog.Info("email sent", "type", e.kind, "to", e.to)
	return nil
}

func (s *EmailService) goalURL(goalID string) string {
	return fmt.Sprintf("%s/goals/%s", s.appURL, goalID)
}

// SendGoalReviewedEmail tells a student their goal was approved or rejected.
// feedbackHTML is the teacher's feedback already rendered from markdown.
func (s *EmailService) SendGoalReviewedEmail(ctx context.Context, to, name, goalID, goalTitle, status, feedback, feedbackHTML string) error {
	subject, text, html := goalReviewedEmailTemplate(name, goalTitle, status, feedback, feedbackHTML, s.goalURL(goalID), s.appName)
	return s.send(ctx, email{kind: "goal_" + status, to: to, subject: subject, text: text, html: html})
}

func (s *EmailService) SendGoalAchievedEmail(ctx context.Context, to, name, goalID, goalTitle string) error {
	subject, text, html := goalAchievedEmailTemplate(name, goalTitle, s.goalURL(goalID), s.appName)
	return s.send(ctx, email{kind: "goal_achieved", to: to, subject: subject, text: text, html: html})
}
