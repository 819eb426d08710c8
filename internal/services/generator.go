package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/dealhawk/dealhawk-backend/internal/clients/redis"
	"github.com/dealhawk/dealhawk-backend/internal/data/repos"
	types "github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/pkg/dbctx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

// ErrAlreadyRunning is returned when a run is requested while another is in
// flight. No log row is written for a rejected invocation.
var ErrAlreadyRunning = errors.New("generation already running")

const generationType = "product_ingestion"

type GenerationResult struct {
	LogID           uuid.UUID     `json:"log_id"`
	ProductsFound   int           `json:"products_found"`
	ProductsAdded   int           `json:"products_added"`
	ProductsUpdated int           `json:"products_updated"`
	CouponsFound    int           `json:"coupons_found"`
	CouponsAdded    int           `json:"coupons_added"`
	Errors          []string      `json:"errors"`
	Duration        time.Duration `json:"duration"`
}

type GenerationStatus struct {
	IsRunning    bool       `json:"is_running"`
	CurrentLogID *uuid.UUID `json:"current_log_id,omitempty"`
}

// GeneratorService serializes ingestion runs. One run at a time per process;
// the database-side stale-run sweep at construction handles the restart case.
type GeneratorService interface {
	Run(ctx context.Context, cfg *GenerationConfig) (*GenerationResult, error)
	Status() GenerationStatus
	Logs(ctx context.Context, limit int) ([]*types.GenerationLog, error)
}

type generatorService struct {
	log          *logger.Logger
	db           *gorm.DB
	productRepo  repos.ProductRepo
	merchantRepo repos.MerchantRepo
	categoryRepo repos.CategoryRepo
	couponRepo   repos.CouponRepo
	networkRepo  repos.NetworkRepo
	logRepo      repos.GenerationLogRepo
	classifier   Classifier
	affiliates   AffiliateService
	cache        redis.Cache
	defaults     *GenerationConfig

	running      atomic.Bool
	mu           sync.Mutex
	currentLogID uuid.UUID
}

type GeneratorDeps struct {
	DB           *gorm.DB
	ProductRepo  repos.ProductRepo
	MerchantRepo repos.MerchantRepo
	CategoryRepo repos.CategoryRepo
	CouponRepo   repos.CouponRepo
	NetworkRepo  repos.NetworkRepo
	LogRepo      repos.GenerationLogRepo
	Classifier   Classifier
	Affiliates   AffiliateService
	Cache        redis.Cache
	Defaults     *GenerationConfig
}

func NewGeneratorService(log *logger.Logger, deps GeneratorDeps) (GeneratorService, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("db required")
	}
	if deps.ProductRepo == nil || deps.MerchantRepo == nil || deps.CategoryRepo == nil ||
		deps.CouponRepo == nil || deps.NetworkRepo == nil || deps.LogRepo == nil {
		return nil, fmt.Errorf("repos required")
	}
	if deps.Classifier == nil {
		return nil, fmt.Errorf("classifier required")
	}

	defaults := deps.Defaults
	if defaults == nil {
		defaults = DefaultGenerationConfig()
	}

	s := &generatorService{
		log:          log.With("service", "GeneratorService"),
		db:           deps.DB,
		productRepo:  deps.ProductRepo,
		merchantRepo: deps.MerchantRepo,
		categoryRepo: deps.CategoryRepo,
		couponRepo:   deps.CouponRepo,
		networkRepo:  deps.NetworkRepo,
		logRepo:      deps.LogRepo,
		classifier:   deps.Classifier,
		affiliates:   deps.Affiliates,
		cache:        deps.Cache,
		defaults:     defaults,
	}

	// A running row can only be an orphan here: no run survives a restart.
	closed, err := s.logRepo.FailStaleRunning(dbctx.Context{Ctx: context.Background()}, 0)
	if err != nil {
		return nil, fmt.Errorf("close stale generation runs: %w", err)
	}
	if closed > 0 {
		s.log.Warn("closed orphaned generation runs", "count", closed)
	}

	return s, nil
}

func (s *generatorService) Status() GenerationStatus {
	if !s.running.Load() {
		return GenerationStatus{IsRunning: false}
	}
	s.mu.Lock()
	id := s.currentLogID
	s.mu.Unlock()
	if id == uuid.Nil {
		return GenerationStatus{IsRunning: true}
	}
	return GenerationStatus{IsRunning: true, CurrentLogID: &id}
}

func (s *generatorService) Logs(ctx context.Context, limit int) ([]*types.GenerationLog, error) {
	return s.logRepo.ListRecent(dbctx.Context{Ctx: ctx}, limit)
}

func (s *generatorService) Run(ctx context.Context, cfg *GenerationConfig) (*GenerationResult, error) {
	if cfg == nil {
		cfg = s.defaults
	}
	runCfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRunning
	}
	defer func() {
		s.mu.Lock()
		s.currentLogID = uuid.Nil
		s.mu.Unlock()
		s.running.Store(false)
	}()

	startedAt := time.Now()
	logRow := &types.GenerationLog{
		Type:      generationType,
		Source:    enabledSources(runCfg),
		Status:    types.GenerationStatusRunning,
		Metadata:  configMetadata(runCfg),
		StartedAt: startedAt,
	}
	if _, err := s.logRepo.Create(dbctx.Context{Ctx: ctx}, []*types.GenerationLog{logRow}); err != nil {
		return nil, fmt.Errorf("create generation log: %w", err)
	}

	s.mu.Lock()
	s.currentLogID = logRow.ID
	s.mu.Unlock()

	s.log.Info("generation run started", "log_id", logRow.ID.String(), "sources", logRow.Source)

	result, runErr := s.execute(ctx, runCfg, logRow.ID)
	completedAt := time.Now()

	if runErr != nil {
		msg := runErr.Error()
		_ = s.logRepo.UpdateFields(dbctx.Context{Ctx: ctx}, logRow.ID, map[string]interface{}{
			"status":       types.GenerationStatusFailed,
			"errors":       errorsJSON([]string{msg}),
			"completed_at": completedAt,
		})
		s.log.Error("generation run failed", "log_id", logRow.ID.String(), "error", msg)
		return nil, runErr
	}

	result.LogID = logRow.ID
	result.Duration = completedAt.Sub(startedAt)

	if err := s.logRepo.UpdateFields(dbctx.Context{Ctx: ctx}, logRow.ID, map[string]interface{}{
		"status":           types.GenerationStatusCompleted,
		"products_found":   result.ProductsFound,
		"products_added":   result.ProductsAdded,
		"products_updated": result.ProductsUpdated,
		"coupons_found":    result.CouponsFound,
		"coupons_added":    result.CouponsAdded,
		"errors":           errorsJSON(result.Errors),
		"completed_at":     completedAt,
	}); err != nil {
		return nil, fmt.Errorf("finalize generation log: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.DeletePrefix(ctx, catalogCachePrefix); err != nil {
			s.log.Warn("catalog cache invalidation failed", "error", err.Error())
		}
	}

	s.log.Info("generation run completed",
		"log_id", logRow.ID.String(),
		"products_found", result.ProductsFound,
		"products_added", result.ProductsAdded,
		"products_updated", result.ProductsUpdated,
		"coupons_found", result.CouponsFound,
		"coupons_added", result.CouponsAdded,
		"errors", len(result.Errors),
		"duration", result.Duration.String(),
	)
	return result, nil
}

// execute runs the pipeline stages in order. Per-item and per-adapter
// failures land in result.Errors; only an error returned here marks the whole
// run failed.
func (s *generatorService) execute(ctx context.Context, cfg *GenerationConfig, logID uuid.UUID) (*GenerationResult, error) {
	result := &GenerationResult{Errors: []string{}}

	var candidates []Candidate

	if cfg.Sources.GoogleTrends {
		trendCands, errs := s.trendCandidates(ctx, cfg)
		candidates = append(candidates, trendCands...)
		result.Errors = append(result.Errors, errs...)
	}
	if cfg.Sources.AmazonAPI || cfg.Sources.AffiliateFeeds {
		affCands, errs := s.affiliateCandidates(ctx, cfg)
		candidates = append(candidates, affCands...)
		result.Errors = append(result.Errors, errs...)
	}

	result.ProductsFound = len(candidates)

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		created, err := s.upsertCandidate(ctx, cand)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product %q: %v", cand.Name, err))
			continue
		}
		if created {
			result.ProductsAdded++
		} else {
			result.ProductsUpdated++
		}
	}

	found, added, errs := s.generateCoupons(ctx, cfg)
	result.CouponsFound = found
	result.CouponsAdded = added
	result.Errors = append(result.Errors, errs...)

	return result, nil
}

func enabledSources(cfg *GenerationConfig) string {
	out := ""
	add := func(name string, on bool) {
		if !on {
			return
		}
		if out != "" {
			out += ","
		}
		out += name
	}
	add("google_trends", cfg.Sources.GoogleTrends)
	add("amazon_api", cfg.Sources.AmazonAPI)
	add("affiliate_feeds", cfg.Sources.AffiliateFeeds)
	return out
}

func configMetadata(cfg *GenerationConfig) datatypes.JSONMap {
	return datatypes.JSONMap{
		"frequency":         cfg.Frequency,
		"quality_threshold": *cfg.QualityThreshold,
		"min_reviews":       *cfg.MinReviews,
		"price_range":       map[string]any{"min": cfg.PriceRange.Min, "max": cfg.PriceRange.Max},
		"sources": map[string]any{
			"google_trends":   cfg.Sources.GoogleTrends,
			"amazon_api":      cfg.Sources.AmazonAPI,
			"affiliate_feeds": cfg.Sources.AffiliateFeeds,
		},
		"categories": cfg.Categories,
	}
}

func errorsJSON(errs []string) datatypes.JSON {
	if len(errs) == 0 {
		return datatypes.JSON([]byte("[]"))
	}
	raw, err := json.Marshal(errs)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
