package models

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

var tierLimits = map[Tier]int{
	TierFree:       10,
	TierPro:        200,
	TierEnterprise: 5000,
}

// Limit returns the monthly generation quota granted by the tier.
func (t Tier) Limit() int {
	if n, ok := tierLimits[t]; ok {
		return n
	}
	return tierLimits[TierFree]
}

func (t Tier) Valid() bool {
	_, ok := tierLimits[t]
	return ok
}
