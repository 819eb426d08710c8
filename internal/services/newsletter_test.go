package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/testutil"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/sendgrid"
)

type fakeMailer struct {
	sent []sendgrid.SendEmailRequest
	err  error
}

func (f *fakeMailer) Send(ctx context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, req)
	return &sendgrid.SendEmailResult{StatusCode: 202}, nil
}

func newNewsletterFixture(t *testing.T, mailer sendgrid.Client) (NewsletterService, repos.SubscriberRepo, *gorm.DB) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	subscriberRepo := repos.NewSubscriberRepo(gdb, log)
	productRepo := repos.NewProductRepo(gdb, log)

	svc, err := NewNewsletterService(log, subscriberRepo, productRepo, mailer)
	if err != nil {
		t.Fatalf("NewNewsletterService: %v", err)
	}
	return svc, subscriberRepo, gdb
}

func TestSubscribeIsIdempotent(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _, gdb := newNewsletterFixture(t, mailer)
	ctx := context.Background()

	first, err := svc.Subscribe(ctx, "Dana@Example.COM ", "footer")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if first.Email != "dana@example.com" {
		t.Fatalf("email not normalized: %q", first.Email)
	}
	if len(mailer.sent) != 1 {
		t.Fatalf("welcome emails sent = %d, want 1", len(mailer.sent))
	}

	second, err := svc.Subscribe(ctx, "dana@example.com", "footer")
	if err != nil {
		t.Fatalf("repeat subscribe: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("repeat subscribe created a new row")
	}
	if len(mailer.sent) != 1 {
		t.Fatal("repeat subscribe must not resend welcome email")
	}

	var n int64
	if err := gdb.Model(&types.Subscriber{}).Where("email = ?", "dana@example.com").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("subscriber rows = %d, want 1", n)
	}
}

func TestSubscribeRejectsInvalidEmail(t *testing.T) {
	svc, _, _ := newNewsletterFixture(t, nil)
	for _, email := range []string{"", "   ", "not-an-email", "a@"} {
		if _, err := svc.Subscribe(context.Background(), email, ""); err == nil {
			t.Fatalf("expected error for %q", email)
		}
	}
}

func TestUnsubscribeAndReactivate(t *testing.T) {
	svc, subscriberRepo, _ := newNewsletterFixture(t, nil)
	ctx := context.Background()

	created, err := svc.Subscribe(ctx, "lee@example.com", "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := svc.Unsubscribe(ctx, "LEE@example.com"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	row, err := subscriberRepo.GetByEmail(dbctx.Context{Ctx: ctx}, "lee@example.com")
	if err != nil || row == nil {
		t.Fatalf("load subscriber: %v", err)
	}
	if row.Status != types.SubscriberStatusUnsubscribed || row.UnsubscribedAt == nil {
		t.Fatalf("unsubscribe not recorded: %+v", row)
	}

	// Unsubscribing an unknown or already-unsubscribed address is a no-op.
	if err := svc.Unsubscribe(ctx, "lee@example.com"); err != nil {
		t.Fatalf("repeat unsubscribe: %v", err)
	}
	if err := svc.Unsubscribe(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown unsubscribe: %v", err)
	}

	reactivated, err := svc.Subscribe(ctx, "lee@example.com", "")
	if err != nil {
		t.Fatalf("resubscribe: %v", err)
	}
	if reactivated.ID != created.ID {
		t.Fatal("resubscribe must reuse the original row")
	}
	if reactivated.Status != types.SubscriberStatusSubscribed || reactivated.UnsubscribedAt != nil {
		t.Fatalf("row not reactivated: %+v", reactivated)
	}
}

func TestSendDigestWithoutMailer(t *testing.T) {
	svc, _, _ := newNewsletterFixture(t, nil)
	if _, err := svc.SendDigest(context.Background()); err == nil {
		t.Fatal("expected error when email client is not configured")
	}
}

func TestSendDigest(t *testing.T) {
	mailer := &fakeMailer{}
	svc, _, gdb := newNewsletterFixture(t, mailer)
	ctx := context.Background()
	log := testutil.Logger(t)
	dbc := dbctx.Context{Ctx: ctx}

	merchantRepo := repos.NewMerchantRepo(gdb, log)
	productRepo := repos.NewProductRepo(gdb, log)

	merchant := &types.Merchant{Name: "Digest Direct", NameKey: "digest direct", Slug: "digest-direct", IsActive: true}
	if _, err := merchantRepo.Create(dbc, []*types.Merchant{merchant}); err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	price := 49.99
	product := &types.Product{
		Name:       "Digest Special Blender",
		NameKey:    "digest special blender",
		Slug:       "digest-special-blender",
		MerchantID: merchant.ID,
		SalePrice:  &price,
		IsActive:   true,
		ProductURL: "https://example.com/blender",
	}
	if _, err := productRepo.Create(dbc, []*types.Product{product}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	if _, err := svc.Subscribe(ctx, "sam@example.com", ""); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	mailer.sent = nil

	result, err := svc.SendDigest(ctx)
	if err != nil {
		t.Fatalf("SendDigest: %v", err)
	}
	if result.Recipients < 1 || result.Batches < 1 {
		t.Fatalf("digest result: %+v", result)
	}
	if len(mailer.sent) != result.Batches {
		t.Fatalf("batches sent = %d, want %d", len(mailer.sent), result.Batches)
	}
}

func TestSubscribeSurvivesWelcomeFailure(t *testing.T) {
	svc, _, _ := newNewsletterFixture(t, &fakeMailer{err: errors.New("smtp down")})
	if _, err := svc.Subscribe(context.Background(), "pat@example.com", ""); err != nil {
		t.Fatalf("subscribe must not fail on welcome email error: %v", err)
	}
}
