package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/testutil"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
)

func newAnalyticsFixture(t *testing.T) (AnalyticsService, repoSet) {
	t.Helper()
	gdb := testutil.DB(t)
	log := testutil.Logger(t)

	set := repoSet{
		Merchant: repos.NewMerchantRepo(gdb, log),
		Category: repos.NewCategoryRepo(gdb, log),
		Product:  repos.NewProductRepo(gdb, log),
		Coupon:   repos.NewCouponRepo(gdb, log),
		Network:  repos.NewNetworkRepo(gdb, log),
		Log:      repos.NewGenerationLogRepo(gdb, log),
	}
	svc, err := NewAnalyticsService(
		log,
		set.Product,
		set.Merchant,
		set.Coupon,
		repos.NewSubscriberRepo(gdb, log),
		repos.NewClickoutRepo(gdb, log),
		set.Log,
	)
	if err != nil {
		t.Fatalf("NewAnalyticsService: %v", err)
	}
	return svc, set
}

func seedClickoutProduct(t *testing.T, set repoSet, name, slug, affiliateURL string) *types.Product {
	t.Helper()
	dbc := dbctx.Context{Ctx: context.Background()}

	merchant := &types.Merchant{Name: name + " Store", NameKey: name + " store", Slug: slug + "-store", IsActive: true}
	if _, err := set.Merchant.Create(dbc, []*types.Merchant{merchant}); err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	product := &types.Product{
		Name:         name,
		NameKey:      name,
		Slug:         slug,
		MerchantID:   merchant.ID,
		IsActive:     true,
		ProductURL:   "https://example.com/" + slug,
		AffiliateURL: affiliateURL,
	}
	if _, err := set.Product.Create(dbc, []*types.Product{product}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestRecordClickoutPrefersAffiliateURL(t *testing.T) {
	svc, set := newAnalyticsFixture(t)
	ctx := context.Background()

	tracked := seedClickoutProduct(t, set, "clickout tracked", "clickout-tracked", "https://affiliate.example.com/t/123")
	url, err := svc.RecordClickout(ctx, tracked.ID, "203.0.113.9", "https://google.com")
	if err != nil {
		t.Fatalf("RecordClickout: %v", err)
	}
	if url != tracked.AffiliateURL {
		t.Fatalf("redirect url = %q, want affiliate link", url)
	}

	plain := seedClickoutProduct(t, set, "clickout plain", "clickout-plain", "")
	url, err = svc.RecordClickout(ctx, plain.ID, "203.0.113.9", "")
	if err != nil {
		t.Fatalf("RecordClickout: %v", err)
	}
	if url != plain.ProductURL {
		t.Fatalf("redirect url = %q, want product url", url)
	}
}

func TestRecordClickoutHashesIP(t *testing.T) {
	svc, set := newAnalyticsFixture(t)
	ctx := context.Background()

	product := seedClickoutProduct(t, set, "clickout hashed", "clickout-hashed", "")
	if _, err := svc.RecordClickout(ctx, product.ID, "198.51.100.7", ""); err != nil {
		t.Fatalf("RecordClickout: %v", err)
	}

	gdb := testutil.DB(t)
	var row types.Clickout
	if err := gdb.Where("product_id = ?", product.ID).Limit(1).Find(&row).Error; err != nil {
		t.Fatalf("load clickout: %v", err)
	}
	if row.IPHash == "" || row.IPHash == "198.51.100.7" {
		t.Fatalf("ip stored unhashed or empty: %q", row.IPHash)
	}
	if len(row.IPHash) != 16 {
		t.Fatalf("ip hash length = %d, want 16 hex chars", len(row.IPHash))
	}
}

func TestRecordClickoutUnknownProduct(t *testing.T) {
	svc, _ := newAnalyticsFixture(t)
	if _, err := svc.RecordClickout(context.Background(), uuid.New(), "203.0.113.9", ""); err == nil {
		t.Fatal("expected error for unknown product")
	}
}

func TestDashboard(t *testing.T) {
	svc, set := newAnalyticsFixture(t)
	ctx := context.Background()

	product := seedClickoutProduct(t, set, "dashboard pick", "dashboard-pick", "")
	for i := 0; i < 3; i++ {
		if _, err := svc.RecordClickout(ctx, product.ID, "192.0.2.1", ""); err != nil {
			t.Fatalf("RecordClickout: %v", err)
		}
	}

	stats, err := svc.Dashboard(ctx)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if stats.Products < 1 || stats.Merchants < 1 {
		t.Fatalf("counts missing: %+v", stats)
	}
	if stats.Clickouts30d < 3 {
		t.Fatalf("clickouts = %d, want >= 3", stats.Clickouts30d)
	}
	if len(stats.TopProducts) == 0 {
		t.Fatal("expected top products")
	}
	found := false
	for _, top := range stats.TopProducts {
		if top.Product != nil && top.Product.ID == product.ID {
			found = true
			if top.Clicks < 3 {
				t.Fatalf("clicks for seeded product = %d, want >= 3", top.Clicks)
			}
		}
	}
	if !found {
		t.Fatal("seeded product missing from top products")
	}
	if stats.RecentRuns == nil {
		t.Fatal("recent runs must be non-nil")
	}
}
