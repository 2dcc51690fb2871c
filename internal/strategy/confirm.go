package strategy

import "AhrSentinel/internal/model"

// DefaultMVRVCeiling is the confirmation value above which a 3x is downgraded.
const DefaultMVRVCeiling = 1.0

// Confirm applies the on-chain veto: a proposed 3x becomes 2x when the
// confirmation value is above ceiling. A missing value never changes the action.
func Confirm(proposed model.Action, c model.ConfirmationSignal, ceiling float64) model.Action {
	if proposed != model.ActionThreeX || c.Value == nil {
		return proposed
	}
	if *c.Value > ceiling {
		return model.ActionTwoX
	}
	return proposed
}
