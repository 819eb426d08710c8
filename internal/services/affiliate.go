package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	affclient "github.com/dealhawk/dealhawk-backend/internal/clients/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

// AffiliateService owns the stored network records and the per-kind HTTP
// client behind them. TestConnection flips the persisted status so the
// ingestion pipeline only talks to networks that answered recently.
type AffiliateService interface {
	CreateNetwork(ctx context.Context, network *types.AffiliateNetwork) (*types.AffiliateNetwork, error)
	ListNetworks(ctx context.Context) ([]*types.AffiliateNetwork, error)
	TestConnection(ctx context.Context, networkID uuid.UUID) (*affclient.ConnectionResult, error)
	TestAllConnections(ctx context.Context) (map[string]*affclient.ConnectionResult, error)
	FetchProducts(ctx context.Context, networkID uuid.UUID, category string, limit int) ([]Candidate, error)
	FetchCoupons(ctx context.Context, networkID uuid.UUID, merchantName string) ([]affclient.CouponOffer, error)
	VerifyCoupon(ctx context.Context, code string, merchantID uuid.UUID) (*affclient.VerifyResult, error)
}

type affiliateService struct {
	log          *logger.Logger
	client       affclient.Client
	networkRepo  repos.NetworkRepo
	merchantRepo repos.MerchantRepo
}

func NewAffiliateService(
	log *logger.Logger,
	client affclient.Client,
	networkRepo repos.NetworkRepo,
	merchantRepo repos.MerchantRepo,
) (AffiliateService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if client == nil {
		return nil, fmt.Errorf("affiliate client required")
	}
	if networkRepo == nil || merchantRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	return &affiliateService{
		log:          log.With("service", "AffiliateService"),
		client:       client,
		networkRepo:  networkRepo,
		merchantRepo: merchantRepo,
	}, nil
}

func (s *affiliateService) CreateNetwork(ctx context.Context, network *types.AffiliateNetwork) (*types.AffiliateNetwork, error) {
	if network == nil {
		return nil, fmt.Errorf("network required")
	}
	if network.Name == "" || network.Slug == "" || network.Kind == "" {
		return nil, fmt.Errorf("network name, slug and kind are required")
	}
	if network.Status == "" {
		network.Status = types.NetworkStatusPending
	}
	created, err := s.networkRepo.Create(dbctx.Context{Ctx: ctx}, []*types.AffiliateNetwork{network})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *affiliateService) ListNetworks(ctx context.Context) ([]*types.AffiliateNetwork, error) {
	return s.networkRepo.List(dbctx.Context{Ctx: ctx})
}

func (s *affiliateService) loadNetwork(ctx context.Context, networkID uuid.UUID) (*types.AffiliateNetwork, error) {
	network, err := s.networkRepo.GetByID(dbctx.Context{Ctx: ctx}, networkID)
	if err != nil {
		return nil, err
	}
	if network == nil {
		return nil, fmt.Errorf("affiliate network %s not found", networkID)
	}
	return network, nil
}

func (s *affiliateService) TestConnection(ctx context.Context, networkID uuid.UUID) (*affclient.ConnectionResult, error) {
	network, err := s.loadNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}

	result, callErr := s.client.TestConnection(ctx, network)
	now := time.Now()
	updates := map[string]interface{}{
		"last_checked_at": now,
	}
	if result != nil && result.Success {
		updates["status"] = types.NetworkStatusActive
		updates["last_error"] = ""
	} else {
		updates["status"] = types.NetworkStatusInactive
		msg := "connection failed"
		if callErr != nil {
			msg = callErr.Error()
		} else if result != nil {
			msg = result.Message
		}
		updates["last_error"] = msg
	}

	if err := s.networkRepo.UpdateFields(dbctx.Context{Ctx: ctx}, network.ID, updates); err != nil {
		return result, fmt.Errorf("record connection status for %s: %w", network.Slug, err)
	}

	s.log.Info("network connection tested",
		"network", network.Slug,
		"kind", network.Kind,
		"status", updates["status"],
	)
	if result == nil {
		result = &affclient.ConnectionResult{Success: false, Message: updates["last_error"].(string)}
	}
	return result, nil
}

// TestAllConnections sweeps every stored network with bounded concurrency.
// A failing network lands in the result map as unsuccessful; it never aborts
// the sweep.
func (s *affiliateService) TestAllConnections(ctx context.Context) (map[string]*affclient.ConnectionResult, error) {
	networks, err := s.networkRepo.List(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, err
	}

	results := make(map[string]*affclient.ConnectionResult, len(networks))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, network := range networks {
		network := network
		g.Go(func() error {
			result, err := s.TestConnection(gctx, network.ID)
			if result == nil {
				msg := "connection failed"
				if err != nil {
					msg = err.Error()
				}
				result = &affclient.ConnectionResult{Success: false, Message: msg}
			}
			mu.Lock()
			results[network.Slug] = result
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *affiliateService) FetchProducts(ctx context.Context, networkID uuid.UUID, category string, limit int) ([]Candidate, error) {
	network, err := s.loadNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if network.Status != types.NetworkStatusActive {
		return nil, fmt.Errorf("network %s is %s, not active", network.Slug, network.Status)
	}

	offers, err := s.client.FetchProducts(ctx, network, category, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch products from %s: %w", network.Slug, err)
	}

	out := make([]Candidate, 0, len(offers))
	for _, offer := range offers {
		out = append(out, offerToCandidate(offer, network))
	}
	return out, nil
}

func offerToCandidate(offer affclient.ProductOffer, network *types.AffiliateNetwork) Candidate {
	return Candidate{
		Name:          offer.Name,
		Description:   offer.Description,
		Category:      offer.Category,
		Price:         offer.Price,
		OriginalPrice: offer.OriginalPrice,
		ImageURL:      offer.ImageURL,
		ProductURL:    offer.ProductURL,
		MerchantName:  offer.MerchantName,
		Rating:        offer.Rating,
		ReviewCount:   offer.ReviewCount,
		ExternalID:    offer.ExternalID,
		Source:        "affiliate:" + network.Slug,
	}
}

func (s *affiliateService) FetchCoupons(ctx context.Context, networkID uuid.UUID, merchantName string) ([]affclient.CouponOffer, error) {
	network, err := s.loadNetwork(ctx, networkID)
	if err != nil {
		return nil, err
	}
	if network.Status != types.NetworkStatusActive {
		return nil, fmt.Errorf("network %s is %s, not active", network.Slug, network.Status)
	}
	return s.client.FetchCoupons(ctx, network, merchantName)
}

// VerifyCoupon asks each active network about the code until one recognises
// it. A code no network lists stays unverified rather than erroring.
func (s *affiliateService) VerifyCoupon(ctx context.Context, code string, merchantID uuid.UUID) (*affclient.VerifyResult, error) {
	merchantName := ""
	if merchantID != uuid.Nil {
		merchant, err := s.merchantRepo.GetByID(dbctx.Context{Ctx: ctx}, merchantID)
		if err != nil {
			return nil, err
		}
		if merchant != nil {
			merchantName = merchant.Name
		}
	}

	networks, err := s.networkRepo.ListByStatus(dbctx.Context{Ctx: ctx}, types.NetworkStatusActive)
	if err != nil {
		return nil, err
	}
	if len(networks) == 0 {
		return &affclient.VerifyResult{Valid: false, Message: "no active networks to verify against"}, nil
	}

	var lastMessage string
	for _, network := range networks {
		result, err := s.client.VerifyCoupon(ctx, network, code, merchantName)
		if err != nil {
			s.log.Warn("coupon verification failed on network",
				"network", network.Slug,
				"error", err.Error(),
			)
			continue
		}
		if result.Valid {
			return result, nil
		}
		lastMessage = result.Message
	}
	if lastMessage == "" {
		lastMessage = "code not recognised by any active network"
	}
	return &affclient.VerifyResult{Valid: false, Message: lastMessage}, nil
}
