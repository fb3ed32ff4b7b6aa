package payment

import (
	"fmt"

	"github.com/yiba-it/postir/internal/models"
)

// PlanOffer describes a purchasable plan shown on the pricing page.
type PlanOffer struct {
	Plan        string
	NameAR      string
	NameEN      string
	AmountSAR   int64
	Tokens      int
	DaysValid   int
	Description string
}

var planOffers = map[string]PlanOffer{
	models.PlanStarter: {
		Plan:        models.PlanStarter,
		NameAR:      "باقة البداية",
		NameEN:      "Starter Plan",
		AmountSAR:   10,
		Tokens:      10,
		Description: "10 generation tokens",
	},
	models.PlanPro: {
		Plan:        models.PlanPro,
		NameAR:      "باقة برو",
		NameEN:      "Pro Plan",
		AmountSAR:   99,
		Tokens:      999999,
		DaysValid:   30,
		Description: "Unlimited generations for 30 days",
	},
}

// OfferFor returns the purchasable offer for a plan name. The free plan is not
// purchasable.
func OfferFor(plan string) (PlanOffer, error) {
	offer, ok := planOffers[plan]
	if !ok {
		return PlanOffer{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	return offer, nil
}

// Offers lists every purchasable plan.
func Offers() []PlanOffer {
	return []PlanOffer{planOffers[models.PlanStarter], planOffers[models.PlanPro]}
}
