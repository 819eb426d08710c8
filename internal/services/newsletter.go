package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
	"github.com/dealhawk/dealhawk-backend/internal/platform/sendgrid"
)

const digestBatchSize = 100

type DigestResult struct {
	Recipients int `json:"recipients"`
	Products   int `json:"products"`
	Batches    int `json:"batches"`
}

// NewsletterService runs the email funnel. Subscribe is idempotent on the
// address; the welcome email is best effort and never fails the signup.
type NewsletterService interface {
	Subscribe(ctx context.Context, email, source string) (*types.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	SendDigest(ctx context.Context) (*DigestResult, error)
}

type newsletterService struct {
	log            *logger.Logger
	subscriberRepo repos.SubscriberRepo
	productRepo    repos.ProductRepo
	mailer         sendgrid.Client
}

func NewNewsletterService(
	log *logger.Logger,
	subscriberRepo repos.SubscriberRepo,
	productRepo repos.ProductRepo,
	mailer sendgrid.Client,
) (NewsletterService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if subscriberRepo == nil || productRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	return &newsletterService{
		log:            log.With("service", "NewsletterService"),
		subscriberRepo: subscriberRepo,
		productRepo:    productRepo,
		mailer:         mailer,
	}, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("email required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("invalid email address")
	}
	return email, nil
}

func (s *newsletterService) Subscribe(ctx context.Context, email, source string) (*types.Subscriber, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.subscriberRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.Status == types.SubscriberStatusSubscribed {
			return existing, nil
		}
		// Re-subscribing after an unsubscribe reactivates the same row.
		now := time.Now()
		if err := s.subscriberRepo.UpdateFields(dbc, existing.ID, map[string]interface{}{
			"status":          types.SubscriberStatusSubscribed,
			"subscribed_at":   now,
			"unsubscribed_at": nil,
		}); err != nil {
			return nil, err
		}
		existing.Status = types.SubscriberStatusSubscribed
		existing.SubscribedAt = now
		existing.UnsubscribedAt = nil
		return existing, nil
	}

	subscriber := &types.Subscriber{
		Email:        email,
		Status:       types.SubscriberStatusSubscribed,
		Source:       strings.TrimSpace(source),
		SubscribedAt: time.Now(),
	}
	if _, err := s.subscriberRepo.Create(dbc, []*types.Subscriber{subscriber}); err != nil {
		return nil, err
	}

	s.sendWelcome(ctx, email)
	return subscriber, nil
}

func (s *newsletterService) sendWelcome(ctx context.Context, email string) {
	if s.mailer == nil {
		return
	}
	_, err := s.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:      []sendgrid.EmailAddress{{Email: email}},
		Subject: "Welcome to the deals list",
		Text: "You're on the list. Expect a short weekly digest of the best " +
			"verified deals and coupons. Unsubscribe any time from the link in each email.",
		Categories: []string{"welcome"},
	})
	if err != nil {
		s.log.Warn("welcome email failed", "email", email, "error", err.Error())
	}
}

func (s *newsletterService) Unsubscribe(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.subscriberRepo.GetByEmail(dbc, email)
	if err != nil {
		return err
	}
	if existing == nil || existing.Status == types.SubscriberStatusUnsubscribed {
		return nil
	}
	now := time.Now()
	return s.subscriberRepo.UpdateFields(dbc, existing.ID, map[string]interface{}{
		"status":          types.SubscriberStatusUnsubscribed,
		"unsubscribed_at": now,
	})
}

// SendDigest assembles the current top deals and mails them to every
// subscribed address in batches. A failed batch is logged and skipped; the
// digest keeps going.
func (s *newsletterService) SendDigest(ctx context.Context) (*DigestResult, error) {
	if s.mailer == nil {
		return nil, fmt.Errorf("email client not configured")
	}
	dbc := dbctx.Context{Ctx: ctx}

	products, err := s.productRepo.List(dbc, repos.ProductFilter{ActiveOnly: true, Limit: 10})
	if err != nil {
		return nil, fmt.Errorf("load digest products: %w", err)
	}
	if len(products) == 0 {
		return nil, fmt.Errorf("no active products for digest")
	}
	body := digestBody(products)

	result := &DigestResult{Products: len(products)}
	offset := 0
	for {
		subscribers, err := s.subscriberRepo.ListByStatus(dbc, types.SubscriberStatusSubscribed, digestBatchSize, offset)
		if err != nil {
			return result, fmt.Errorf("list subscribers: %w", err)
		}
		if len(subscribers) == 0 {
			break
		}

		to := make([]sendgrid.EmailAddress, 0, len(subscribers))
		for _, sub := range subscribers {
			to = append(to, sendgrid.EmailAddress{Email: sub.Email})
		}

		_, err = s.mailer.Send(ctx, sendgrid.SendEmailRequest{
			To:         to,
			Subject:    "This week's top deals",
			Text:       body,
			Categories: []string{"digest"},
		})
		if err != nil {
			s.log.Warn("digest batch failed", "offset", offset, "size", len(to), "error", err.Error())
		} else {
			result.Recipients += len(to)
			result.Batches++
		}

		if len(subscribers) < digestBatchSize {
			break
		}
		offset += digestBatchSize
	}

	s.log.Info("digest sent", "recipients", result.Recipients, "batches", result.Batches, "products", result.Products)
	return result, nil
}

func digestBody(products []*types.Product) string {
	var b strings.Builder
	b.WriteString("This week's top deals:\n\n")
	for _, p := range products {
		line := "- " + p.Name
		if p.SalePrice != nil {
			line += fmt.Sprintf(" for %.2f", *p.SalePrice)
		}
		if p.DiscountPercentage > 0 {
			line += fmt.Sprintf(" (%d%% off)", p.DiscountPercentage)
		}
		if p.AffiliateURL != "" {
			line += "\n  " + p.AffiliateURL
		} else if p.ProductURL != "" {
			line += "\n  " + p.ProductURL
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
