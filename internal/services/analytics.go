package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/envutil"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

const clickoutWindow = 30 * 24 * time.Hour

type TopProduct struct {
	Product *types.Product `json:"product"`
	Clicks  int64          `json:"clicks"`
}

type DashboardStats struct {
	Products      int64                  `json:"products"`
	Merchants     int64                  `json:"merchants"`
	ActiveCoupons int64                  `json:"active_coupons"`
	Subscribers   int64                  `json:"subscribers"`
	Clickouts30d  int64                  `json:"clickouts_30d"`
	TopProducts   []TopProduct           `json:"top_products"`
	RecentRuns    []*types.GenerationLog `json:"recent_runs"`
}

// AnalyticsService aggregates real store counts for the admin dashboard and
// records outbound clicks for attribution.
type AnalyticsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	RecordClickout(ctx context.Context, productID uuid.UUID, ip, referrer string) (string, error)
}

type analyticsService struct {
	log            *logger.Logger
	productRepo    repos.ProductRepo
	merchantRepo   repos.MerchantRepo
	couponRepo     repos.CouponRepo
	subscriberRepo repos.SubscriberRepo
	clickoutRepo   repos.ClickoutRepo
	logRepo        repos.GenerationLogRepo
	ipSalt         string
}

func NewAnalyticsService(
	log *logger.Logger,
	productRepo repos.ProductRepo,
	merchantRepo repos.MerchantRepo,
	couponRepo repos.CouponRepo,
	subscriberRepo repos.SubscriberRepo,
	clickoutRepo repos.ClickoutRepo,
	logRepo repos.GenerationLogRepo,
) (AnalyticsService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if productRepo == nil || merchantRepo == nil || couponRepo == nil ||
		subscriberRepo == nil || clickoutRepo == nil || logRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	return &analyticsService{
		log:            log.With("service", "AnalyticsService"),
		productRepo:    productRepo,
		merchantRepo:   merchantRepo,
		couponRepo:     couponRepo,
		subscriberRepo: subscriberRepo,
		clickoutRepo:   clickoutRepo,
		logRepo:        logRepo,
		ipSalt:         envutil.String("ANALYTICS_IP_SALT", "dealhawk"),
	}, nil
}

func (s *analyticsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	since := time.Now().Add(-clickoutWindow)
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	g.Go(func() error {
		n, err := s.productRepo.Count(dbctx.Context{Ctx: gctx})
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		stats.Products = n
		return nil
	})
	g.Go(func() error {
		n, err := s.merchantRepo.Count(dbctx.Context{Ctx: gctx})
		if err != nil {
			return fmt.Errorf("count merchants: %w", err)
		}
		stats.Merchants = n
		return nil
	})
	g.Go(func() error {
		n, err := s.couponRepo.CountActive(dbctx.Context{Ctx: gctx})
		if err != nil {
			return fmt.Errorf("count active coupons: %w", err)
		}
		stats.ActiveCoupons = n
		return nil
	})
	g.Go(func() error {
		n, err := s.subscriberRepo.CountByStatus(dbctx.Context{Ctx: gctx}, types.SubscriberStatusSubscribed)
		if err != nil {
			return fmt.Errorf("count subscribers: %w", err)
		}
		stats.Subscribers = n
		return nil
	})
	g.Go(func() error {
		n, err := s.clickoutRepo.CountSince(dbctx.Context{Ctx: gctx}, since)
		if err != nil {
			return fmt.Errorf("count clickouts: %w", err)
		}
		stats.Clickouts30d = n
		return nil
	})
	g.Go(func() error {
		counts, err := s.clickoutRepo.TopProductsSince(dbctx.Context{Ctx: gctx}, since, 5)
		if err != nil {
			return fmt.Errorf("top products: %w", err)
		}
		top := make([]TopProduct, 0, len(counts))
		for _, row := range counts {
			product, err := s.productRepo.GetByID(dbctx.Context{Ctx: gctx}, row.ProductID)
			if err != nil {
				return fmt.Errorf("load top product %s: %w", row.ProductID, err)
			}
			if product == nil {
				continue
			}
			top = append(top, TopProduct{Product: product, Clicks: row.Clicks})
		}
		mu.Lock()
		stats.TopProducts = top
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		runs, err := s.logRepo.ListRecent(dbctx.Context{Ctx: gctx}, 5)
		if err != nil {
			return fmt.Errorf("recent runs: %w", err)
		}
		mu.Lock()
		stats.RecentRuns = runs
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if stats.TopProducts == nil {
		stats.TopProducts = []TopProduct{}
	}
	if stats.RecentRuns == nil {
		stats.RecentRuns = []*types.GenerationLog{}
	}
	return stats, nil
}

// RecordClickout stores the click and returns the URL to redirect through,
// preferring the tracked affiliate link.
func (s *analyticsService) RecordClickout(ctx context.Context, productID uuid.UUID, ip, referrer string) (string, error) {
	product, err := s.productRepo.GetByID(dbctx.Context{Ctx: ctx}, productID)
	if err != nil {
		return "", err
	}
	if product == nil {
		return "", fmt.Errorf("product %s not found", productID)
	}

	clickout := &types.Clickout{
		ProductID:  product.ID,
		MerchantID: product.MerchantID,
		IPHash:     s.hashIP(ip),
		Referrer:   strings.TrimSpace(referrer),
	}
	if _, err := s.clickoutRepo.Create(dbctx.Context{Ctx: ctx}, []*types.Clickout{clickout}); err != nil {
		return "", fmt.Errorf("record clickout: %w", err)
	}

	if product.AffiliateURL != "" {
		return product.AffiliateURL, nil
	}
	return product.ProductURL, nil
}

func (s *analyticsService) hashIP(ip string) string {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(s.ipSalt + ":" + ip))
	return hex.EncodeToString(sum[:8])
}
