package placement

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultCapacityPolicy_IsValid(t *testing.T) {
	assert.NoError(t, DefaultCapacityPolicy().Validate())
}

func TestCapacityPolicy_ValidateRejectsBadValues(t *testing.T) {
	policy := DefaultCapacityPolicy()
	policy.IMCUTeams = []TeamID{1, 2, 16}
	policy.OverflowTeams = []TeamID{2, 14}
	policy.IMCUHardCap = 0
	policy.SoftCap = -1
	policy.MaxCensusGap = -2

	err := policy.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "team 16 is outside 1-15")
	assert.Contains(t, err.Error(), "Med 2 cannot be both IMCU and overflow")
	assert.Contains(t, err.Error(), "IMCU hard cap must be positive")
	assert.Contains(t, err.Error(), "soft cap must be positive")
	assert.Contains(t, err.Error(), "max census gap cannot be negative")
}

func TestCapacityPolicy_SoftTargetAboveHardCap(t *testing.T) {
	policy := DefaultCapacityPolicy()
	policy.IMCUSoftTarget = 11

	err := policy.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "IMCU soft target 11")
}

func TestCapacityPolicy_Caps(t *testing.T) {
	policy := DefaultCapacityPolicy()

	assert.True(t, policy.AtHardCap(1, 10))
	assert.False(t, policy.AtHardCap(1, 9))
	assert.False(t, policy.AtHardCap(4, 20), "non-IMCU teams have no hard cap")

	assert.True(t, policy.UnderOwnCap(2, 9))
	assert.False(t, policy.UnderOwnCap(2, 10))
	assert.True(t, policy.UnderOwnCap(5, 13))
	assert.False(t, policy.UnderOwnCap(5, 14))
}

func TestCapacityPolicy_OverflowThresholdDefaultsToSoftCap(t *testing.T) {
	policy := DefaultCapacityPolicy()
	assert.Equal(t, 14, policy.overflowThreshold())

	policy.OverflowThreshold = 12
	assert.Equal(t, 12, policy.overflowThreshold())
}
