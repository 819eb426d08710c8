package domain

import (
	"github.com/dealhawk/dealhawk-backend/internal/domain/affiliate"
	"github.com/dealhawk/dealhawk-backend/internal/domain/catalog"
	"github.com/dealhawk/dealhawk-backend/internal/domain/generation"
	"github.com/dealhawk/dealhawk-backend/internal/domain/marketing"
)

type Merchant = catalog.Merchant
type Category = catalog.Category
type Product = catalog.Product
type Coupon = catalog.Coupon

type AffiliateNetwork = affiliate.Network

type GenerationLog = generation.Log

type Subscriber = marketing.Subscriber
type Clickout = marketing.Clickout

const (
	DiscountTypePercentage = catalog.DiscountTypePercentage
	DiscountTypeFixed      = catalog.DiscountTypeFixed

	NetworkStatusActive   = affiliate.NetworkStatusActive
	NetworkStatusInactive = affiliate.NetworkStatusInactive
	NetworkStatusPending  = affiliate.NetworkStatusPending

	NetworkKindCommissionJunction = affiliate.NetworkKindCommissionJunction
	NetworkKindImpact             = affiliate.NetworkKindImpact
	NetworkKindAmazon             = affiliate.NetworkKindAmazon
	NetworkKindShareASale         = affiliate.NetworkKindShareASale
	NetworkKindGeneric            = affiliate.NetworkKindGeneric

	GenerationStatusRunning   = generation.StatusRunning
	GenerationStatusCompleted = generation.StatusCompleted
	GenerationStatusFailed    = generation.StatusFailed

	SubscriberStatusSubscribed   = marketing.SubscriberStatusSubscribed
	SubscriberStatusUnsubscribed = marketing.SubscriberStatusUnsubscribed
)
