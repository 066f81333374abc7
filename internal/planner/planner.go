package planner

import (
	"errors"
	"fmt"

	"github.com/printcraft/printcraft-backend/pkg/enums"
	"github.com/shopspring/decimal"
)

// ErrInvalidTotal signals a non-positive order total.
var ErrInvalidTotal = errors.New("total amount must be positive")

// ErrTotalTooSmall signals a total whose split would produce a milestone of
// zero, which can neither be stored nor settled.
var ErrTotalTooSmall = errors.New("total amount is too small for the split")

// MilestoneSpec describes a single installment produced by Plan.
type MilestoneSpec struct {
	Label      string
	Amount     decimal.Decimal
	Percentage decimal.Decimal
	OrderIndex int
}

type slice struct {
	label   string
	percent int64
}

var splitTable = map[enums.SplitPolicy][]slice{
	enums.SplitPolicyFull: {
		{label: "Full Payment (100%)", percent: 100},
	},
	enums.SplitPolicyHalf: {
		{label: "Advance Payment (50%)", percent: 50},
		{label: "Balance Before Dispatch (50%)", percent: 50},
	},
	enums.SplitPolicyCustom30: {
		{label: "Project Kickoff (30%)", percent: 30},
		{label: "Post-Sample Approval (30%)", percent: 30},
		{label: "Final Balance (40%)", percent: 40},
	},
}

var oneHundred = decimal.NewFromInt(100)

// Plan maps an order total and split policy to an ordered list of milestone
// specs. Amounts are rounded to two decimal places and the final milestone
// absorbs the rounding remainder, so the amounts always sum to exactly total.
func Plan(total decimal.Decimal, split enums.SplitPolicy) ([]MilestoneSpec, error) {
	if total.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidTotal
	}

	slices, ok := splitTable[split]
	if !ok {
		return nil, fmt.Errorf("unsupported split policy %q", split)
	}

	specs := make([]MilestoneSpec, 0, len(slices))
	allocated := decimal.Zero
	for i, s := range slices {
		percent := decimal.NewFromInt(s.percent)
		var amount decimal.Decimal
		if i == len(slices)-1 {
			amount = total.Sub(allocated)
		} else {
			amount = total.Mul(percent).Div(oneHundred).Round(2)
			allocated = allocated.Add(amount)
		}
		specs = append(specs, MilestoneSpec{
			Label:      s.label,
			Amount:     amount,
			Percentage: percent,
			OrderIndex: i + 1,
		})
	}

	// Every milestone must carry a positive amount: the ledger rejects zero
	// rows and a zero milestone could never be settled.
	for _, spec := range specs {
		if spec.Amount.LessThanOrEqual(decimal.Zero) {
			return nil, ErrTotalTooSmall
		}
	}

	return specs, nil
}
