package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"multiball-waitlist/pkg/clients/mailchimp"
	"multiball-waitlist/pkg/clients/resend"
	"multiball-waitlist/pkg/config"
	"multiball-waitlist/pkg/models"
	"multiball-waitlist/pkg/utils"
)

// ErrInvalidEmail is returned when a submission has no usable email address.
var ErrInvalidEmail = errors.New("valid email is required")

// SignupService defines the interface for general waitlist signups
type SignupService interface {
	Subscribe(ctx context.Context, req models.SignupRequest) (models.Outcome, error)
}

type signupServiceImpl struct {
	mailchimpClient mailchimp.Client
	resendClient    resend.Client
	site            config.Site
	logger          *zap.Logger
}

// NewSignupService creates a new signup service
func NewSignupService(
	mailchimpClient mailchimp.Client,
	resendClient resend.Client,
	site config.Site,
	logger *zap.Logger,
) SignupService {
	return &signupServiceImpl{
		mailchimpClient: mailchimpClient,
		resendClient:    resendClient,
		site:            site,
		logger:          logger,
	}
}

// ValidEmail is the server-side check: present and containing an "@".
func ValidEmail(email string) bool {
	return email != "" && strings.Contains(email, "@")
}

// Subscribe adds the address to the list and welcomes first-time subscribers.
// Only the list upsert decides the outcome; a failed welcome email is logged.
func (s *signupServiceImpl) Subscribe(ctx context.Context, req models.SignupRequest) (models.Outcome, error) {
	if !ValidEmail(req.Email) {
		return models.OutcomeRejectedInvalid, ErrInvalidEmail
	}

	subscriber := utils.SubscriberHash(req.Email)
	log := s.logger.With(zap.String("subscriber", subscriber))

	err := s.mailchimpClient.UpsertMember(ctx, mailchimp.Member{
		EmailAddress: req.Email,
		Status:       "subscribed",
		Tags:         []string{s.site.SignupTag},
	})
	if errors.Is(err, mailchimp.ErrMemberExists) {
		log.Info("Signup for existing member, skipping welcome email")
		return models.OutcomeAcceptedDuplicate, nil
	}
	if err != nil {
		log.Error("Error with Mailchimp API", zap.Error(err))
		return models.OutcomeFailedUpstream, fmt.Errorf("error subscribing: %w", err)
	}

	s.sendWelcome(ctx, req.Email, log)

	return models.OutcomeAcceptedNew, nil
}

func (s *signupServiceImpl) sendWelcome(ctx context.Context, email string, log *zap.Logger) {
	subject, html, err := welcomeEmail(s.site)
	if err != nil {
		log.Error("Error rendering welcome email", zap.Error(err))
		return
	}

	if _, err := s.resendClient.Send(ctx, resend.Email{
		From:    s.site.FromAddress,
		To:      []string{email},
		Subject: subject,
		HTML:    html,
	}); err != nil {
		log.Error("Welcome email error", zap.Error(err))
		return
	}

	log.Info("Sent welcome email")
}
