package affiliate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dealhawk/dealhawk-backend/internal/domain"
	"github.com/dealhawk/dealhawk-backend/internal/platform/envutil"
	"github.com/dealhawk/dealhawk-backend/internal/platform/httpx"
	"github.com/dealhawk/dealhawk-backend/internal/platform/logger"
)

// ProductOffer is one product record as returned by an upstream network,
// before any classification or dedup.
type ProductOffer struct {
	ExternalID    string   `json:"external_id"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Price         float64  `json:"price"`
	OriginalPrice *float64 `json:"original_price,omitempty"`
	ImageURL      string   `json:"image_url,omitempty"`
	ProductURL    string   `json:"product_url"`
	MerchantName  string   `json:"merchant_name"`
	Rating        *float64 `json:"rating,omitempty"`
	ReviewCount   *int     `json:"review_count,omitempty"`
}

type CouponOffer struct {
	Code          string   `json:"code"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	DiscountType  string   `json:"discount_type"`
	DiscountValue float64  `json:"discount_value"`
	MinimumSpend  *float64 `json:"minimum_spend,omitempty"`
	MerchantName  string   `json:"merchant_name"`
	ExpiresAt     *string  `json:"expires_at,omitempty"`
}

type ConnectionResult struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type VerifyResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// Client talks to one affiliate network at a time. The network row carries
// the kind, base URL and credentials; each call is one HTTP round trip.
type Client interface {
	TestConnection(ctx context.Context, network *domain.AffiliateNetwork) (*ConnectionResult, error)
	FetchProducts(ctx context.Context, network *domain.AffiliateNetwork, category string, limit int) ([]ProductOffer, error)
	FetchCoupons(ctx context.Context, network *domain.AffiliateNetwork, merchantName string) ([]CouponOffer, error)
	VerifyCoupon(ctx context.Context, network *domain.AffiliateNetwork, code string, merchantName string) (*VerifyResult, error)
}

type client struct {
	log        *logger.Logger
	httpClient *http.Client
	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	timeoutSec := envutil.Int("AFFILIATE_TIMEOUT_SECONDS", 30)
	maxRetries := envutil.Int("AFFILIATE_MAX_RETRIES", 2)
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &client{
		log:        log.With("client", "AffiliateClient"),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type networkHTTPError struct {
	StatusCode int
	Body       string
}

func (e *networkHTTPError) Error() string {
	return fmt.Sprintf("affiliate http %d: %s", e.StatusCode, e.Body)
}

func (e *networkHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// endpoint resolves the path and query for one operation on one network
// kind. The networks expose wildly different APIs; the shapes here are the
// minimal subset the ingestion pipeline needs.
func endpoint(network *domain.AffiliateNetwork, op string, params url.Values) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(network.BaseURL), "/")
	if base == "" {
		switch network.Kind {
		case domain.NetworkKindCommissionJunction:
			base = "https://ads.api.cj.com"
		case domain.NetworkKindImpact:
			base = "https://api.impact.com"
		case domain.NetworkKindAmazon:
			base = "https://webservices.amazon.com"
		case domain.NetworkKindShareASale:
			base = "https://api.shareasale.com"
		default:
			return "", fmt.Errorf("network %s has no base URL", network.Slug)
		}
	}

	var path string
	switch network.Kind {
	case domain.NetworkKindCommissionJunction:
		switch op {
		case "ping":
			path = "/v3/advertiser-lookup"
		case "products":
			path = "/v3/product-search"
		case "coupons":
			path = "/v3/link-search"
		case "verify":
			path = "/v3/link-search"
		}
	case domain.NetworkKindImpact:
		acct := strings.TrimSpace(network.TrackingID)
		switch op {
		case "ping":
			path = "/Mediapartners/" + acct + "/CompanyInformation"
		case "products":
			path = "/Mediapartners/" + acct + "/Catalogs/ItemSearch"
		case "coupons", "verify":
			path = "/Mediapartners/" + acct + "/Promotions"
		}
	case domain.NetworkKindAmazon:
		switch op {
		case "ping", "products":
			path = "/paapi5/searchitems"
		case "coupons", "verify":
			path = "/paapi5/getitems"
		}
	case domain.NetworkKindShareASale:
		path = "/x.cfm"
		switch op {
		case "ping":
			params.Set("action", "ledger")
		case "products":
			params.Set("action", "products")
		case "coupons", "verify":
			params.Set("action", "couponDeals")
		}
	default:
		switch op {
		case "ping":
			path = "/ping"
		case "products":
			path = "/products"
		case "coupons":
			path = "/coupons"
		case "verify":
			path = "/coupons/verify"
		}
	}
	if path == "" {
		return "", fmt.Errorf("operation %q not supported for network kind %s", op, network.Kind)
	}

	u := base + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	return u, nil
}

func authorize(req *http.Request, network *domain.AffiliateNetwork) {
	switch network.Kind {
	case domain.NetworkKindCommissionJunction:
		req.Header.Set("Authorization", "Bearer "+network.APIKey)
	case domain.NetworkKindImpact:
		req.SetBasicAuth(network.TrackingID, network.APIKey)
	case domain.NetworkKindShareASale:
		q := req.URL.Query()
		q.Set("affiliateId", network.TrackingID)
		q.Set("token", network.APIKey)
		req.URL.RawQuery = q.Encode()
	default:
		req.Header.Set("Authorization", "Bearer "+network.APIKey)
		if network.APISecret != "" {
			req.Header.Set("X-Api-Secret", network.APISecret)
		}
	}
	req.Header.Set("Accept", "application/json")
}

func (c *client) get(ctx context.Context, network *domain.AffiliateNetwork, op string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	target, err := endpoint(network, op, params)
	if err != nil {
		return err
	}

	backoff := 1 * time.Second
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.getOnce(ctx, network, target)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("affiliate decode error (%s %s): %w", network.Slug, op, uErr)
			}
			return nil
		}

		if !httpx.IsRetryableError(err) || attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("affiliate request retrying",
			"network", network.Slug,
			"op", op,
			"attempt", attempt+1,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		time.Sleep(sleepFor)
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func (c *client) getOnce(ctx context.Context, network *domain.AffiliateNetwork, target string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, nil, err
	}
	authorize(req, network)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &networkHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) TestConnection(ctx context.Context, network *domain.AffiliateNetwork) (*ConnectionResult, error) {
	if network == nil {
		return nil, fmt.Errorf("network required")
	}
	var data map[string]any
	if err := c.get(ctx, network, "ping", nil, &data); err != nil {
		return &ConnectionResult{Success: false, Message: err.Error()}, err
	}
	return &ConnectionResult{Success: true, Message: "connection ok", Data: data}, nil
}

type productSearchResponse struct {
	Products []ProductOffer `json:"products"`
	Items    []ProductOffer `json:"items"`
}

func (c *client) FetchProducts(ctx context.Context, network *domain.AffiliateNetwork, category string, limit int) ([]ProductOffer, error) {
	if network == nil {
		return nil, fmt.Errorf("network required")
	}
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("keywords", category)
	params.Set("limit", strconv.Itoa(limit))

	var resp productSearchResponse
	if err := c.get(ctx, network, "products", params, &resp); err != nil {
		return nil, err
	}

	offers := resp.Products
	if len(offers) == 0 {
		offers = resp.Items
	}
	if len(offers) > limit {
		offers = offers[:limit]
	}
	for i := range offers {
		if offers[i].Category == "" {
			offers[i].Category = category
		}
		if offers[i].MerchantName == "" {
			offers[i].MerchantName = network.Name
		}
	}
	return offers, nil
}

type couponSearchResponse struct {
	Coupons []CouponOffer `json:"coupons"`
	Deals   []CouponOffer `json:"deals"`
}

func (c *client) FetchCoupons(ctx context.Context, network *domain.AffiliateNetwork, merchantName string) ([]CouponOffer, error) {
	if network == nil {
		return nil, fmt.Errorf("network required")
	}

	params := url.Values{}
	if strings.TrimSpace(merchantName) != "" {
		params.Set("merchant", merchantName)
	}

	var resp couponSearchResponse
	if err := c.get(ctx, network, "coupons", params, &resp); err != nil {
		return nil, err
	}
	offers := resp.Coupons
	if len(offers) == 0 {
		offers = resp.Deals
	}
	return offers, nil
}

func (c *client) VerifyCoupon(ctx context.Context, network *domain.AffiliateNetwork, code string, merchantName string) (*VerifyResult, error) {
	if network == nil {
		return nil, fmt.Errorf("network required")
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("coupon code required")
	}

	params := url.Values{}
	params.Set("code", code)
	if strings.TrimSpace(merchantName) != "" {
		params.Set("merchant", merchantName)
	}

	var resp struct {
		Valid   *bool         `json:"valid"`
		Message string        `json:"message"`
		Coupons []CouponOffer `json:"coupons"`
	}
	if err := c.get(ctx, network, "verify", params, &resp); err != nil {
		return &VerifyResult{Valid: false, Message: err.Error()}, err
	}

	if resp.Valid != nil {
		return &VerifyResult{Valid: *resp.Valid, Message: resp.Message}, nil
	}
	for _, offer := range resp.Coupons {
		if strings.EqualFold(offer.Code, code) {
			return &VerifyResult{Valid: true, Message: "code listed by network"}, nil
		}
	}
	return &VerifyResult{Valid: false, Message: "code not listed by network"}, nil
}
