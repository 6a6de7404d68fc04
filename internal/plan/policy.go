// AngelaMos | 2026
// policy.go

// Package plan holds the canonical subscription tier policy table. It is a
// pure lookup layer: no I/O, no persistence beyond the tier name stored on
// each user.
package plan

import (
	"slices"

	"github.com/pos-nt/backend/internal/config"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierBasic      Tier = "basic"
	TierPremium    Tier = "premium"
	TierEnterprise Tier = "enterprise"
)

// Unlimited disables a ceiling.
const Unlimited = -1

const (
	FeatureBasicPOS            = "basic_pos"
	FeatureBasicReports        = "basic_reports"
	FeatureExportData          = "export_data"
	FeatureEmailNotifications  = "email_notifications"
	FeatureInventoryManagement = "inventory_management"
	FeatureCustomerManagement  = "customer_management"
	FeatureAdvancedReports     = "advanced_reports"
	FeatureMultiBranch         = "multi_branch"
	FeatureAPIAccess           = "api_access"
	FeatureWhiteLabel          = "white_label"
)

type Limits struct {
	MaxProducts   int
	MaxDailySales int
	MaxUsers      int
	Features      []string
}

func (l Limits) HasFeature(feature string) bool {
	return slices.Contains(l.Features, feature)
}

// AllowsProducts reports whether a user holding count products may add one more.
func (l Limits) AllowsProducts(count int) bool {
	return l.MaxProducts == Unlimited || count < l.MaxProducts
}

// AllowsDailySales reports whether a user with count sales today may record
// one more.
func (l Limits) AllowsDailySales(count int) bool {
	return l.MaxDailySales == Unlimited || count < l.MaxDailySales
}

// AllowsUsers reports whether one more staff account may be created.
func (l Limits) AllowsUsers(count int) bool {
	return l.MaxUsers == Unlimited || count < l.MaxUsers
}

func defaultLimits() map[Tier]Limits {
	return map[Tier]Limits{
		TierFree: {
			MaxProducts:   50,
			MaxDailySales: 10,
			MaxUsers:      2,
			Features: []string{
				FeatureBasicPOS,
				FeatureBasicReports,
			},
		},
		TierBasic: {
			MaxProducts:   500,
			MaxDailySales: 100,
			MaxUsers:      5,
			Features: []string{
				FeatureBasicPOS,
				FeatureBasicReports,
				FeatureExportData,
				FeatureEmailNotifications,
				FeatureInventoryManagement,
				FeatureCustomerManagement,
			},
		},
		TierPremium: {
			MaxProducts:   5000,
			MaxDailySales: 1000,
			MaxUsers:      20,
			Features: []string{
				FeatureBasicPOS,
				FeatureBasicReports,
				FeatureExportData,
				FeatureEmailNotifications,
				FeatureInventoryManagement,
				FeatureCustomerManagement,
				FeatureAdvancedReports,
				FeatureMultiBranch,
				FeatureAPIAccess,
			},
		},
		TierEnterprise: {
			MaxProducts:   Unlimited,
			MaxDailySales: Unlimited,
			MaxUsers:      Unlimited,
			Features: []string{
				FeatureBasicPOS,
				FeatureBasicReports,
				FeatureExportData,
				FeatureEmailNotifications,
				FeatureInventoryManagement,
				FeatureCustomerManagement,
				FeatureAdvancedReports,
				FeatureMultiBranch,
				FeatureAPIAccess,
				FeatureWhiteLabel,
			},
		},
	}
}

type Policy struct {
	limits map[Tier]Limits
}

// NewPolicy builds the policy table, applying per-tier overrides from
// configuration on top of the built-in defaults.
func NewPolicy(cfg config.PlanConfig) *Policy {
	limits := defaultLimits()

	for name, override := range cfg.Limits {
		tier := Tier(name)
		if _, ok := limits[tier]; !ok {
			continue
		}

		current := limits[tier]
		if override.MaxProducts != 0 {
			current.MaxProducts = override.MaxProducts
		}
		if override.MaxDailySales != 0 {
			current.MaxDailySales = override.MaxDailySales
		}
		if override.MaxUsers != 0 {
			current.MaxUsers = override.MaxUsers
		}
		if len(override.Features) > 0 {
			current.Features = override.Features
		}
		limits[tier] = current
	}

	return &Policy{limits: limits}
}

func DefaultPolicy() *Policy {
	return &Policy{limits: defaultLimits()}
}

// LimitsFor never fails: an unknown or empty tier resolves to the free tier.
func (p *Policy) LimitsFor(tier Tier) Limits {
	if limits, ok := p.limits[tier]; ok {
		return limits
	}
	return p.limits[TierFree]
}

func (p *Policy) HasFeature(tier Tier, feature string) bool {
	return p.LimitsFor(tier).HasFeature(feature)
}

func ValidTier(tier Tier) bool {
	switch tier {
	case TierFree, TierBasic, TierPremium, TierEnterprise:
		return true
	}
	return false
}
