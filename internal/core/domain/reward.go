package domain

// RewardDefinition describes one redeemable reward in the static catalog.
// Redeemed state is tracked per user on the ProgressLedger.
type RewardDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Cost        int64  `json:"cost"`
}

// Rewards is the static reward catalog. Costs are resolved server-side so a
// client can never redeem at a price of its own choosing.
var Rewards = []RewardDefinition{
	{ID: "plant_tree", Name: "Plant a Tree", Description: "We plant a tree in a reforestation project on your behalf.", Cost: 250},
	{ID: "reusable_bottle", Name: "Reusable Bottle", Description: "A stainless steel bottle shipped to your door.", Cost: 400},
	{ID: "beach_cleanup", Name: "Beach Cleanup Donation", Description: "Fund one volunteer hour of coastal cleanup.", Cost: 600},
	{ID: "eco_consult", Name: "Home Energy Consult", Description: "A 30 minute consultation with an efficiency expert.", Cost: 1000},
}

// RewardByID looks up a reward definition in the catalog.
func RewardByID(id string) (RewardDefinition, bool) {
	for _, r := range Rewards {
		if r.ID == id {
			return r, true
		}
	}
	return RewardDefinition{}, false
}
