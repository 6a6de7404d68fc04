// AngelaMos | 2026
// policy_test.go

package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pos-nt/backend/internal/config"
)

func TestDefaultPolicyFreeTier(t *testing.T) {
	limits := DefaultPolicy().LimitsFor(TierFree)

	assert.Equal(t, 50, limits.MaxProducts)
	assert.Equal(t, 10, limits.MaxDailySales)
	assert.Equal(t, 2, limits.MaxUsers)
	assert.True(t, limits.HasFeature(FeatureBasicPOS))
	assert.False(t, limits.HasFeature(FeatureCustomerManagement))
}

func TestLimitsForUnknownTierFallsBackToFree(t *testing.T) {
	p := DefaultPolicy()

	assert.Equal(t, p.LimitsFor(TierFree), p.LimitsFor(Tier("gold")))
	assert.Equal(t, p.LimitsFor(TierFree), p.LimitsFor(Tier("")))
}

func TestAllowsDailySalesBoundary(t *testing.T) {
	limits := Limits{MaxDailySales: 10}

	assert.True(t, limits.AllowsDailySales(9))
	assert.False(t, limits.AllowsDailySales(10))
	assert.False(t, limits.AllowsDailySales(11))
}

func TestUnlimitedNeverBlocks(t *testing.T) {
	limits := DefaultPolicy().LimitsFor(TierEnterprise)

	assert.True(t, limits.AllowsProducts(1_000_000))
	assert.True(t, limits.AllowsDailySales(1_000_000))
	assert.True(t, limits.AllowsUsers(1_000_000))
}

func TestNewPolicyAppliesOverrides(t *testing.T) {
	p := NewPolicy(config.PlanConfig{
		Limits: map[string]config.PlanLimits{
			"free": {MaxDailySales: 3},
		},
	})

	limits := p.LimitsFor(TierFree)
	assert.Equal(t, 3, limits.MaxDailySales)
	// Untouched fields keep their defaults.
	assert.Equal(t, 50, limits.MaxProducts)
	assert.Equal(t, 2, limits.MaxUsers)
}

func TestNewPolicyIgnoresUnknownTier(t *testing.T) {
	p := NewPolicy(config.PlanConfig{
		Limits: map[string]config.PlanLimits{
			"platinum": {MaxProducts: 9},
		},
	})

	assert.Equal(t, DefaultPolicy().LimitsFor(TierFree), p.LimitsFor(TierFree))
	assert.Equal(
		t,
		DefaultPolicy().LimitsFor(TierFree),
		p.LimitsFor(Tier("platinum")),
	)
}

func TestValidTier(t *testing.T) {
	assert.True(t, ValidTier(TierFree))
	assert.True(t, ValidTier(TierEnterprise))
	assert.False(t, ValidTier(Tier("gold")))
}
