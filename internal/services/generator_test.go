package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	affclient "github.com/dealhawk/dealhawk-backend/internal/clients/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos/testutil"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
)

// fakeClassifier satisfies the pipeline's classification contract without
// network calls.
type fakeClassifier struct {
	keywords       map[string][]string
	category       string
	categorizeFail bool
	couponCands    []CouponCandidate
	couponErr      error
	block          chan struct{}
}

func (f *fakeClassifier) CategorizeProduct(ctx context.Context, name, description string) CategorizationResult {
	if f.categorizeFail {
		return fallbackCategorization()
	}
	category := f.category
	if category == "" {
		category = "Electronics"
	}
	return CategorizationResult{Category: category, Confidence: 0.9, Keywords: []string{"deal"}}
}

func (f *fakeClassifier) GenerateProductContent(ctx context.Context, name, description, category string) ContentResult {
	return ContentResult{Title: name, Description: description, Features: []string{}, Benefits: []string{}}
}

func (f *fakeClassifier) GenerateCoupons(ctx context.Context, merchantName, category string, count int) ([]CouponCandidate, error) {
	if f.couponErr != nil {
		return nil, f.couponErr
	}
	return f.couponCands, nil
}

func (f *fakeClassifier) TrendingKeywords(ctx context.Context, category string) []string {
	if f.block != nil {
		<-f.block
	}
	return f.keywords[category]
}

// fakeAffiliate serves candidates for one known network and nothing for the
// rest, so rows left behind by other tests stay out of the counts.
type fakeAffiliate struct {
	networkID  uuid.UUID
	candidates []Candidate
	err        error
}

func (f *fakeAffiliate) CreateNetwork(ctx context.Context, n *types.AffiliateNetwork) (*types.AffiliateNetwork, error) {
	return n, nil
}
func (f *fakeAffiliate) ListNetworks(ctx context.Context) ([]*types.AffiliateNetwork, error) {
	return nil, nil
}
func (f *fakeAffiliate) TestConnection(ctx context.Context, id uuid.UUID) (*affclient.ConnectionResult, error) {
	return &affclient.ConnectionResult{Success: true}, nil
}
func (f *fakeAffiliate) TestAllConnections(ctx context.Context) (map[string]*affclient.ConnectionResult, error) {
	return nil, nil
}
func (f *fakeAffiliate) FetchProducts(ctx context.Context, networkID uuid.UUID, category string, limit int) ([]Candidate, error) {
	if networkID != f.networkID {
		return nil, nil
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.candidates, nil
}
func (f *fakeAffiliate) FetchCoupons(ctx context.Context, networkID uuid.UUID, merchantName string) ([]affclient.CouponOffer, error) {
	return nil, nil
}
func (f *fakeAffiliate) VerifyCoupon(ctx context.Context, code string, merchantID uuid.UUID) (*affclient.VerifyResult, error) {
	return &affclient.VerifyResult{Valid: false}, nil
}

type generatorFixture struct {
	db      *gorm.DB
	repos   repoSet
	service GeneratorService
}

type repoSet struct {
	Merchant repos.MerchantRepo
	Category repos.CategoryRepo
	Product  repos.ProductRepo
	Coupon   repos.CouponRepo
	Network  repos.NetworkRepo
	Log      repos.GenerationLogRepo
}

func newGeneratorFixture(t *testing.T, classifier Classifier, affiliate AffiliateService) *generatorFixture {
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

	svc, err := NewGeneratorService(log, GeneratorDeps{
		DB:           gdb,
		ProductRepo:  set.Product,
		MerchantRepo: set.Merchant,
		CategoryRepo: set.Category,
		CouponRepo:   set.Coupon,
		NetworkRepo:  set.Network,
		LogRepo:      set.Log,
		Classifier:   classifier,
		Affiliates:   affiliate,
	})
	if err != nil {
		t.Fatalf("NewGeneratorService: %v", err)
	}
	return &generatorFixture{db: gdb, repos: set, service: svc}
}

func trendOnlyConfig(categories ...string) *GenerationConfig {
	return &GenerationConfig{
		Sources:    &SourcesConfig{GoogleTrends: true, AmazonAPI: false, AffiliateFeeds: false},
		Categories: categories,
	}
}

func logCount(t *testing.T, gdb *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(&types.GenerationLog{}).Count(&n).Error; err != nil {
		t.Fatalf("count logs: %v", err)
	}
	return n
}

func TestComputeDiscount(t *testing.T) {
	orig := 100.0
	if got := computeDiscount(&orig, 75); got != 25 {
		t.Fatalf("computeDiscount(100, 75) = %d, want 25", got)
	}
	if got := computeDiscount(nil, 75); got != 0 {
		t.Fatalf("computeDiscount(nil, 75) = %d, want 0", got)
	}
	zero := 0.0
	if got := computeDiscount(&zero, 75); got != 0 {
		t.Fatalf("computeDiscount(0, 75) = %d, want 0", got)
	}
	orig = 30
	if got := computeDiscount(&orig, 19.99); got != 33 {
		t.Fatalf("computeDiscount(30, 19.99) = %d, want 33", got)
	}
}

func TestTrendOnlyRunOnEmptyStore(t *testing.T) {
	classifier := &fakeClassifier{
		keywords: map[string][]string{
			"Electronics": {"noise cancelling earbuds", "mechanical keyboard", "4k webcam"},
		},
		category: "Electronics",
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()

	result, err := fx.service.Run(ctx, trendOnlyConfig("Electronics"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ProductsFound != 3 || result.ProductsAdded != 3 {
		t.Fatalf("found=%d added=%d, want 3/3", result.ProductsFound, result.ProductsAdded)
	}
	if result.ProductsAdded > 5 {
		t.Fatalf("trend source must cap at 5 per category, added %d", result.ProductsAdded)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}

	dbc := dbctx.Context{Ctx: ctx}
	merchant, err := fx.repos.Merchant.GetByNameKey(dbc, "trend picks direct")
	if err != nil || merchant == nil {
		t.Fatalf("trend merchant not created: %v", err)
	}
	if merchant.Slug != "trend-picks-direct" {
		t.Fatalf("merchant slug = %q", merchant.Slug)
	}

	product, err := fx.repos.Product.FindByNameKey(dbc, "noise cancelling earbuds deal finder pick")
	if err != nil || product == nil {
		t.Fatalf("trend product not created: %v", err)
	}
	if v, ok := product.Metadata["aiGenerated"].(bool); !ok || !v {
		t.Fatalf("metadata aiGenerated = %v", product.Metadata["aiGenerated"])
	}
	if product.SalePrice == nil || *product.SalePrice < 10 || *product.SalePrice > 1000 {
		t.Fatalf("sale price outside configured range: %v", product.SalePrice)
	}

	logRow, err := fx.repos.Log.GetByID(dbc, result.LogID)
	if err != nil || logRow == nil {
		t.Fatalf("log row missing: %v", err)
	}
	if logRow.Status != types.GenerationStatusCompleted {
		t.Fatalf("log status = %q", logRow.Status)
	}
	if logRow.CompletedAt == nil {
		t.Fatal("log completed_at not set")
	}
}

func TestIdempotentReingestion(t *testing.T) {
	classifier := &fakeClassifier{
		keywords: map[string][]string{"Fashion": {"linen overshirt"}},
		category: "Fashion",
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()

	first, err := fx.service.Run(ctx, trendOnlyConfig("Fashion"))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.ProductsAdded != 1 || first.ProductsUpdated != 0 {
		t.Fatalf("first run added=%d updated=%d", first.ProductsAdded, first.ProductsUpdated)
	}

	second, err := fx.service.Run(ctx, trendOnlyConfig("Fashion"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.ProductsAdded != 0 || second.ProductsUpdated != 1 {
		t.Fatalf("second run added=%d updated=%d, want 0/1", second.ProductsAdded, second.ProductsUpdated)
	}

	var n int64
	if err := fx.db.Model(&types.Product{}).Where("name_key = ?", "linen overshirt deal finder pick").Count(&n).Error; err != nil {
		t.Fatalf("count products: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly one product row, got %d", n)
	}
}

func TestReingestionAfterProductDelete(t *testing.T) {
	classifier := &fakeClassifier{
		keywords: map[string][]string{"Garden": {"solar path light"}},
		category: "Garden",
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	first, err := fx.service.Run(ctx, trendOnlyConfig("Garden"))
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.ProductsAdded != 1 {
		t.Fatalf("first run added = %d, want 1", first.ProductsAdded)
	}

	product, err := fx.repos.Product.FindByNameKey(dbc, "solar path light deal finder pick")
	if err != nil || product == nil {
		t.Fatalf("product missing after first run: %v", err)
	}
	if err := fx.repos.Product.Delete(dbc, product.ID); err != nil {
		t.Fatalf("delete product: %v", err)
	}

	// The soft-deleted row must not hold the name_key hostage.
	second, err := fx.service.Run(ctx, trendOnlyConfig("Garden"))
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if len(second.Errors) != 0 {
		t.Fatalf("second run errors: %v", second.Errors)
	}
	if second.ProductsAdded != 1 || second.ProductsUpdated != 0 {
		t.Fatalf("second run added=%d updated=%d, want 1/0", second.ProductsAdded, second.ProductsUpdated)
	}

	replacement, err := fx.repos.Product.FindByNameKey(dbc, "solar path light deal finder pick")
	if err != nil || replacement == nil {
		t.Fatalf("product not re-ingested: %v", err)
	}
	if replacement.ID == product.ID {
		t.Fatal("re-ingestion must create a fresh row, not resurrect the deleted one")
	}
}

func TestConcurrentInvocationRejected(t *testing.T) {
	block := make(chan struct{})
	classifier := &fakeClassifier{
		keywords: map[string][]string{"Automotive": {"dash cam"}},
		category: "Automotive",
		block:    block,
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()

	before := logCount(t, fx.db)

	done := make(chan error, 1)
	go func() {
		_, err := fx.service.Run(ctx, trendOnlyConfig("Automotive"))
		done <- err
	}()

	deadline := time.After(5 * time.Second)
	for !fx.service.Status().IsRunning {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		case <-time.After(5 * time.Millisecond):
		}
	}

	_, err := fx.service.Run(ctx, trendOnlyConfig("Automotive"))
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}

	close(block)
	if err := <-done; err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	if got := logCount(t, fx.db) - before; got != 1 {
		t.Fatalf("expected exactly one new log row, got %d", got)
	}
	if fx.service.Status().IsRunning {
		t.Fatal("run flag not released")
	}
}

func TestGracefulClassifierDegradation(t *testing.T) {
	classifier := &fakeClassifier{
		keywords:       map[string][]string{"Pet Supplies": {"slow feeder bowl"}},
		categorizeFail: true,
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()

	result, err := fx.service.Run(ctx, trendOnlyConfig("Pet Supplies"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.ProductsAdded != 1 {
		t.Fatalf("added = %d, want 1", result.ProductsAdded)
	}

	dbc := dbctx.Context{Ctx: ctx}
	product, err := fx.repos.Product.FindByNameKey(dbc, "slow feeder bowl deal finder pick")
	if err != nil || product == nil {
		t.Fatalf("product missing: %v", err)
	}
	category, err := fx.repos.Category.GetByNameKey(dbc, "uncategorized")
	if err != nil || category == nil {
		t.Fatalf("fallback category missing: %v", err)
	}

	logRow, err := fx.repos.Log.GetByID(dbc, result.LogID)
	if err != nil || logRow == nil {
		t.Fatalf("log missing: %v", err)
	}
	if logRow.Status != types.GenerationStatusCompleted {
		t.Fatalf("run must still complete, status = %q", logRow.Status)
	}
}

func TestErrorAggregation(t *testing.T) {
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	networkRepo := repos.NewNetworkRepo(gdb, log)

	network := &types.AffiliateNetwork{
		Name:   "Aggregation Feed",
		Slug:   "aggregation-feed",
		Kind:   types.NetworkKindGeneric,
		Status: types.NetworkStatusActive,
	}
	if _, err := networkRepo.Create(dbctx.Context{Ctx: context.Background()}, []*types.AffiliateNetwork{network}); err != nil {
		t.Fatalf("create network: %v", err)
	}

	candidates := make([]Candidate, 0, 10)
	for i := 0; i < 10; i++ {
		name := ""
		if i >= 2 {
			name = "aggregation widget " + string(rune('a'+i))
		}
		candidates = append(candidates, Candidate{
			Name:         name,
			Description:  "test candidate",
			Category:     "Electronics",
			Price:        20,
			ProductURL:   "https://example.com/widget",
			MerchantName: "Aggregation Mart",
			Source:       "affiliate:aggregation-feed",
		})
	}

	classifier := &fakeClassifier{category: "Electronics"}
	affiliate := &fakeAffiliate{networkID: network.ID, candidates: candidates}
	fx := newGeneratorFixture(t, classifier, affiliate)

	cfg := &GenerationConfig{
		Sources:    &SourcesConfig{GoogleTrends: false, AmazonAPI: false, AffiliateFeeds: true},
		Categories: []string{"Electronics"},
	}
	result, err := fx.service.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.ProductsFound != 10 {
		t.Fatalf("found = %d, want 10", result.ProductsFound)
	}
	if result.ProductsAdded+result.ProductsUpdated != 8 {
		t.Fatalf("added+updated = %d, want 8", result.ProductsAdded+result.ProductsUpdated)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("errors = %v, want exactly 2", result.Errors)
	}
}

func TestCouponCodeDedup(t *testing.T) {
	classifier := &fakeClassifier{
		couponCands: []CouponCandidate{{
			Code:          "DEDUP20",
			Title:         "20 percent off",
			Description:   "Save on your first order",
			DiscountType:  types.DiscountTypePercentage,
			DiscountValue: 20,
			ExpiresInDays: 14,
		}},
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	merchant := &types.Merchant{Name: "Dedup Depot", NameKey: "dedup depot", Slug: "dedup-depot", IsActive: true}
	if _, err := fx.repos.Merchant.Create(dbc, []*types.Merchant{merchant}); err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	existing := &types.Coupon{
		Code:          "DEDUP20",
		DiscountType:  types.DiscountTypePercentage,
		DiscountValue: 20,
		MerchantID:    merchant.ID,
		IsActive:      true,
	}
	if _, err := fx.repos.Coupon.Create(dbc, []*types.Coupon{existing}); err != nil {
		t.Fatalf("seed coupon: %v", err)
	}

	var before int64
	if err := fx.db.Model(&types.Coupon{}).Where("code = ?", "DEDUP20").Count(&before).Error; err != nil {
		t.Fatalf("count coupons: %v", err)
	}

	result, err := fx.service.Run(ctx, trendOnlyConfig("Electronics"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.CouponsFound == 0 {
		t.Fatal("expected coupon candidates to be found")
	}
	if result.CouponsAdded != 0 {
		t.Fatalf("coupons added = %d, want 0", result.CouponsAdded)
	}

	var after int64
	if err := fx.db.Model(&types.Coupon{}).Where("code = ?", "DEDUP20").Count(&after).Error; err != nil {
		t.Fatalf("count coupons: %v", err)
	}
	if before != after {
		t.Fatalf("duplicate coupon rows created: %d -> %d", before, after)
	}
}

func TestNewCouponsInsertedUnverified(t *testing.T) {
	classifier := &fakeClassifier{
		couponCands: []CouponCandidate{{
			Code:          "FRESH15",
			Title:         "15 off",
			Description:   "Sitewide",
			DiscountType:  types.DiscountTypeFixed,
			DiscountValue: 15,
			ExpiresInDays: 7,
		}},
	}
	fx := newGeneratorFixture(t, classifier, nil)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx}

	merchant := &types.Merchant{Name: "Fresh Finds", NameKey: "fresh finds", Slug: "fresh-finds", IsActive: true}
	if _, err := fx.repos.Merchant.Create(dbc, []*types.Merchant{merchant}); err != nil {
		t.Fatalf("create merchant: %v", err)
	}

	result, err := fx.service.Run(ctx, trendOnlyConfig("Electronics"))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.CouponsAdded == 0 {
		t.Fatal("expected at least one coupon inserted")
	}

	var coupon types.Coupon
	if err := fx.db.Where("code = ?", "FRESH15").Limit(1).Find(&coupon).Error; err != nil {
		t.Fatalf("load coupon: %v", err)
	}
	if coupon.ID == uuid.Nil {
		t.Fatal("coupon not inserted")
	}
	if coupon.IsVerified {
		t.Fatal("new coupons must start unverified")
	}
	if coupon.ExpiresAt == nil || time.Until(*coupon.ExpiresAt) > 8*24*time.Hour {
		t.Fatalf("expiry not derived from lifespan: %v", coupon.ExpiresAt)
	}
}
