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

// InterestService defines the interface for coach/crew interest submissions
type InterestService interface {
	SubmitInterest(ctx context.Context, req models.InterestRequest) (models.Outcome, error)
}

type interestServiceImpl struct {
	mailchimpClient mailchimp.Client
	resendClient    resend.Client
	site            config.Site
	logger          *zap.Logger
}

// NewInterestService creates a new interest service
func NewInterestService(
	mailchimpClient mailchimp.Client,
	resendClient resend.Client,
	site config.Site,
	logger *zap.Logger,
) InterestService {
	return &interestServiceImpl{
		mailchimpClient: mailchimpClient,
		resendClient:    resendClient,
		site:            site,
		logger:          logger,
	}
}

// SplitName splits a full name into first and last merge fields: the first
// word, then the remaining words joined by single spaces.
func SplitName(name string) (first, last string) {
	words := strings.Fields(name)
	if len(words) == 0 {
		return "", ""
	}
	return words[0], strings.Join(words[1:], " ")
}

// SubmitInterest runs the interest workflow in order: upsert, tag an
// existing member, notify the operator, confirm to the submitter. Only the
// upsert can fail the submission.
func (s *interestServiceImpl) SubmitInterest(ctx context.Context, req models.InterestRequest) (models.Outcome, error) {
	if !ValidEmail(req.Email) {
		return models.OutcomeRejectedInvalid, ErrInvalidEmail
	}

	log := s.logger.With(zap.String("subscriber", utils.SubscriberHash(req.Email)))
	first, last := SplitName(req.Name)

	outcome := models.OutcomeAcceptedNew
	err := s.mailchimpClient.UpsertMember(ctx, mailchimp.Member{
		EmailAddress: req.Email,
		Status:       "subscribed",
		Tags:         []string{s.site.InterestTag},
		MergeFields:  &mailchimp.MergeFields{FirstName: first, LastName: last},
	})
	switch {
	case errors.Is(err, mailchimp.ErrMemberExists):
		outcome = models.OutcomeAcceptedDuplicate
		// adding a member that already exists does not apply the new tag
		if err := s.mailchimpClient.AddTags(ctx, req.Email, s.site.InterestTag); err != nil {
			log.Error("Error tagging existing member", zap.Error(err))
		}
	case err != nil:
		log.Error("Error with Mailchimp API", zap.Error(err))
		return models.OutcomeFailedUpstream, fmt.Errorf("error registering interest: %w", err)
	}

	s.notifyOperator(ctx, req, log)
	s.confirm(ctx, req.Email, first, log)

	log.Info("Processed coach interest", zap.String("outcome", string(outcome)), zap.String("role", req.Role))
	return outcome, nil
}

func (s *interestServiceImpl) notifyOperator(ctx context.Context, req models.InterestRequest, log *zap.Logger) {
	subject, html, err := notificationEmail(req)
	if err != nil {
		log.Error("Error rendering notification email", zap.Error(err))
		return
	}

	if _, err := s.resendClient.Send(ctx, resend.Email{
		From:    s.site.FromAddress,
		To:      []string{s.site.OperatorInbox},
		Subject: subject,
		HTML:    html,
		ReplyTo: req.Email,
	}); err != nil {
		log.Error("Notification email error", zap.Error(err))
	}
}

func (s *interestServiceImpl) confirm(ctx context.Context, email, firstName string, log *zap.Logger) {
	subject, html, err := confirmationEmail(s.site, firstName)
	if err != nil {
		log.Error("Error rendering confirmation email", zap.Error(err))
		return
	}

	if _, err := s.resendClient.Send(ctx, resend.Email{
		From:    s.site.FromAddress,
		To:      []string{email},
		Subject: subject,
		HTML:    html,
	}); err != nil {
		log.Error("Confirmation email error", zap.Error(err))
	}
}
