package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos/testutil"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
)

func txContext(t *testing.T) dbctx.Context {
	t.Helper()
	gdb := testutil.DB(t)
	return dbctx.Context{Ctx: context.Background(), Tx: testutil.Tx(t, gdb)}
}

func seedMerchant(t *testing.T, dbc dbctx.Context, repo MerchantRepo, name, nameKey, slug string) *types.Merchant {
	t.Helper()
	merchant := &types.Merchant{Name: name, NameKey: nameKey, Slug: slug, IsActive: true}
	created, err := repo.Create(dbc, []*types.Merchant{merchant})
	if err != nil {
		t.Fatalf("create merchant: %v", err)
	}
	return created[0]
}

func TestMerchantRepoLookups(t *testing.T) {
	dbc := txContext(t)
	repo := NewMerchantRepo(testutil.DB(t), testutil.Logger(t))

	created := seedMerchant(t, dbc, repo, "Gadget Grove", "gadget grove", "gadget-grove")
	if created.ID == uuid.Nil {
		t.Fatal("id not assigned on create")
	}

	byKey, err := repo.GetByNameKey(dbc, "gadget grove")
	if err != nil {
		t.Fatalf("GetByNameKey: %v", err)
	}
	if byKey == nil || byKey.ID != created.ID {
		t.Fatalf("GetByNameKey returned %+v", byKey)
	}

	bySlug, err := repo.GetBySlug(dbc, "gadget-grove")
	if err != nil {
		t.Fatalf("GetBySlug: %v", err)
	}
	if bySlug == nil || bySlug.ID != created.ID {
		t.Fatalf("GetBySlug returned %+v", bySlug)
	}

	missing, err := repo.GetByNameKey(dbc, "no such merchant")
	if err != nil {
		t.Fatalf("GetByNameKey(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for missing merchant, got %+v", missing)
	}

	if err := repo.UpdateFields(dbc, created.ID, map[string]interface{}{"website": "https://gadgetgrove.example.com"}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	reloaded, err := repo.GetByID(dbc, created.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("GetByID after update: %v", err)
	}
	if reloaded.Website != "https://gadgetgrove.example.com" {
		t.Fatalf("website not updated: %q", reloaded.Website)
	}
	if !reloaded.UpdatedAt.After(reloaded.CreatedAt.Add(-time.Second)) {
		t.Fatalf("updated_at not maintained: %v", reloaded.UpdatedAt)
	}
}

func TestMerchantRepoNilID(t *testing.T) {
	dbc := txContext(t)
	repo := NewMerchantRepo(testutil.DB(t), testutil.Logger(t))

	got, err := repo.GetByID(dbc, uuid.Nil)
	if err != nil {
		t.Fatalf("GetByID(nil): %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for zero id, got %+v", got)
	}
}

func TestProductRepoDedupeLookups(t *testing.T) {
	dbc := txContext(t)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	merchantRepo := NewMerchantRepo(gdb, log)
	repo := NewProductRepo(gdb, log)

	merchant := seedMerchant(t, dbc, merchantRepo, "SKU Superstore", "sku superstore", "sku-superstore")

	sku := "EXT-12345"
	price := 59.0
	product := &types.Product{
		Name:       "Noise Machine Deluxe",
		NameKey:    "noise machine deluxe",
		Slug:       "noise-machine-deluxe",
		MerchantID: merchant.ID,
		SKU:        &sku,
		SalePrice:  &price,
		IsActive:   true,
	}
	if _, err := repo.Create(dbc, []*types.Product{product}); err != nil {
		t.Fatalf("create product: %v", err)
	}

	bySKU, err := repo.FindBySKU(dbc, "EXT-12345")
	if err != nil {
		t.Fatalf("FindBySKU: %v", err)
	}
	if bySKU == nil || bySKU.ID != product.ID {
		t.Fatalf("FindBySKU returned %+v", bySKU)
	}

	byKey, err := repo.FindByNameKey(dbc, "noise machine deluxe")
	if err != nil {
		t.Fatalf("FindByNameKey: %v", err)
	}
	if byKey == nil || byKey.ID != product.ID {
		t.Fatalf("FindByNameKey returned %+v", byKey)
	}

	// Empty keys short-circuit without touching the database.
	if got, err := repo.FindBySKU(dbc, ""); err != nil || got != nil {
		t.Fatalf("FindBySKU(empty) = %+v, %v", got, err)
	}
	if got, err := repo.FindByNameKey(dbc, ""); err != nil || got != nil {
		t.Fatalf("FindByNameKey(empty) = %+v, %v", got, err)
	}
}

func TestProductRepoListFilters(t *testing.T) {
	dbc := txContext(t)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	merchantRepo := NewMerchantRepo(gdb, log)
	repo := NewProductRepo(gdb, log)

	merchant := seedMerchant(t, dbc, merchantRepo, "Filter Finds", "filter finds", "filter-finds")
	other := seedMerchant(t, dbc, merchantRepo, "Other Outlet", "other outlet", "other-outlet")

	cheap, mid, high := 15.0, 80.0, 400.0
	products := []*types.Product{
		{Name: "Filter Cheap", NameKey: "filter cheap", Slug: "filter-cheap", MerchantID: merchant.ID, SalePrice: &cheap, IsActive: true},
		{Name: "Filter Mid", NameKey: "filter mid", Slug: "filter-mid", MerchantID: merchant.ID, SalePrice: &mid, IsActive: true},
		{Name: "Filter High", NameKey: "filter high", Slug: "filter-high", MerchantID: other.ID, SalePrice: &high, IsActive: true},
		{Name: "Filter Hidden", NameKey: "filter hidden", Slug: "filter-hidden", MerchantID: merchant.ID, SalePrice: &mid, IsActive: false},
	}
	if _, err := repo.Create(dbc, products); err != nil {
		t.Fatalf("create products: %v", err)
	}

	active, err := repo.List(dbc, ProductFilter{ActiveOnly: true, Limit: 100})
	if err != nil {
		t.Fatalf("List active: %v", err)
	}
	for _, p := range active {
		if !p.IsActive {
			t.Fatalf("inactive product %q in active listing", p.Slug)
		}
	}

	minP, maxP := 50.0, 100.0
	banded, err := repo.List(dbc, ProductFilter{MinPrice: &minP, MaxPrice: &maxP, Limit: 100})
	if err != nil {
		t.Fatalf("List banded: %v", err)
	}
	for _, p := range banded {
		if p.SalePrice == nil || *p.SalePrice < minP || *p.SalePrice > maxP {
			t.Fatalf("product %q outside price band: %v", p.Slug, p.SalePrice)
		}
	}

	byMerchant, err := repo.List(dbc, ProductFilter{MerchantID: &other.ID, Limit: 100})
	if err != nil {
		t.Fatalf("List by merchant: %v", err)
	}
	if len(byMerchant) != 1 || byMerchant[0].Slug != "filter-high" {
		t.Fatalf("merchant filter returned %d rows", len(byMerchant))
	}
}

func TestProductRepoDelete(t *testing.T) {
	dbc := txContext(t)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	merchantRepo := NewMerchantRepo(gdb, log)
	repo := NewProductRepo(gdb, log)

	merchant := seedMerchant(t, dbc, merchantRepo, "Delete Depot", "delete depot", "delete-depot")
	product := &types.Product{
		Name: "Doomed Gadget", NameKey: "doomed gadget", Slug: "doomed-gadget",
		MerchantID: merchant.ID, IsActive: true,
	}
	if _, err := repo.Create(dbc, []*types.Product{product}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(dbc, product.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := repo.GetByID(dbc, product.ID)
	if err != nil {
		t.Fatalf("GetByID after delete: %v", err)
	}
	if got != nil {
		t.Fatalf("soft-deleted product still visible: %+v", got)
	}
}

func TestCouponRepoExistsAndListByMerchant(t *testing.T) {
	dbc := txContext(t)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	merchantRepo := NewMerchantRepo(gdb, log)
	repo := NewCouponRepo(gdb, log)

	merchant := seedMerchant(t, dbc, merchantRepo, "Code Central", "code central", "code-central")

	expired := time.Now().Add(-24 * time.Hour)
	coupons := []*types.Coupon{
		{Code: "CENTRAL10", DiscountType: types.DiscountTypePercentage, DiscountValue: 10, MerchantID: merchant.ID, IsActive: true},
		{Code: "CENTRALOFF", DiscountType: types.DiscountTypeFixed, DiscountValue: 5, MerchantID: merchant.ID, IsActive: false},
		{Code: "CENTRALOLD", DiscountType: types.DiscountTypePercentage, DiscountValue: 20, MerchantID: merchant.ID, IsActive: true, ExpiresAt: &expired},
	}
	if _, err := repo.Create(dbc, coupons); err != nil {
		t.Fatalf("create coupons: %v", err)
	}

	// A coupon created inactive must be stored inactive; the column has no
	// DB-side default that could swallow the zero value.
	off, err := repo.GetByID(dbc, coupons[1].ID)
	if err != nil || off == nil {
		t.Fatalf("reload CENTRALOFF: %v", err)
	}
	if off.IsActive {
		t.Fatal("CENTRALOFF was created inactive but stored active")
	}

	exists, err := repo.ExistsByCode(dbc, "CENTRAL10")
	if err != nil {
		t.Fatalf("ExistsByCode: %v", err)
	}
	if !exists {
		t.Fatal("expected CENTRAL10 to exist")
	}
	exists, err = repo.ExistsByCode(dbc, "NOPE404")
	if err != nil {
		t.Fatalf("ExistsByCode(missing): %v", err)
	}
	if exists {
		t.Fatal("NOPE404 must not exist")
	}

	activeOnly, err := repo.ListByMerchant(dbc, merchant.ID, true)
	if err != nil {
		t.Fatalf("ListByMerchant: %v", err)
	}
	if len(activeOnly) != 1 || activeOnly[0].Code != "CENTRAL10" {
		t.Fatalf("active coupons = %+v", activeOnly)
	}

	all, err := repo.ListByMerchant(dbc, merchant.ID, false)
	if err != nil {
		t.Fatalf("ListByMerchant(all): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all coupons = %d, want 3", len(all))
	}
}

func TestCategoryRepoNameKeyLookup(t *testing.T) {
	dbc := txContext(t)
	repo := NewCategoryRepo(testutil.DB(t), testutil.Logger(t))

	category := &types.Category{Name: "Board Games", NameKey: "board games", Slug: "board-games"}
	if _, err := repo.Create(dbc, []*types.Category{category}); err != nil {
		t.Fatalf("create category: %v", err)
	}

	got, err := repo.GetByNameKey(dbc, "board games")
	if err != nil {
		t.Fatalf("GetByNameKey: %v", err)
	}
	if got == nil || got.ID != category.ID {
		t.Fatalf("GetByNameKey returned %+v", got)
	}

	missing, err := repo.GetByNameKey(dbc, "no such category")
	if err != nil {
		t.Fatalf("GetByNameKey(missing): %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil, got %+v", missing)
	}
}
