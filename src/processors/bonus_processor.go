package processors

import (
	"github.com/username/twgreports/backend/src/models"
	"github.com/username/twgreports/backend/src/utils"
)

// Tier thresholds are inclusive upper bounds on the accumulated accessory
// amount; the table is exhaustive, so every input lands in exactly one tier.
const (
	tier1MaxAccessory = 2999
	tier2MaxAccessory = 5999
	tier3MaxAccessory = 9999

	tier1Pct = 8
	tier2Pct = 10
	tier3Pct = 15
	tier4Pct = 17
)

type BonusProcessor struct{}

func NewBonusProcessor() *BonusProcessor { return &BonusProcessor{} }

// Calculate maps accumulated accessory sales to a tier and applies the tier
// percentage to accumulated profit. No plausibility checks: a negative profit
// yields a negative bonus on purpose.
func (p *BonusProcessor) Calculate(totalAccessory, totalProfit float64) models.TierResult {
	var tier string
	var pct float64

	switch {
	case totalAccessory <= tier1MaxAccessory:
		tier, pct = "Tier 1", tier1Pct
	case totalAccessory <= tier2MaxAccessory:
		tier, pct = "Tier 2", tier2Pct
	case totalAccessory <= tier3MaxAccessory:
		tier, pct = "Tier 3", tier3Pct
	default:
		tier, pct = "Tier 4", tier4Pct
	}

	return models.TierResult{
		Tier:     tier,
		BonusPct: pct,
		Bonus:    utils.RoundFloat(totalProfit*pct/100, 2),
	}
}
