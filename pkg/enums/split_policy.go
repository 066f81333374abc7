package enums

import "fmt"

// SplitPolicy is the admin-chosen division of an order's total into payment
// milestones. The enumeration is closed; adding a split is a code change.
type SplitPolicy string

const (
	SplitPolicyFull     SplitPolicy = "FULL"
	SplitPolicyHalf     SplitPolicy = "HALF"
	SplitPolicyCustom30 SplitPolicy = "CUSTOM_30"
)

var validSplitPolicies = []SplitPolicy{
	SplitPolicyFull,
	SplitPolicyHalf,
	SplitPolicyCustom30,
}

// String implements fmt.Stringer.
func (s SplitPolicy) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SplitPolicy.
func (s SplitPolicy) IsValid() bool {
	for _, candidate := range validSplitPolicies {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSplitPolicy converts raw input into a SplitPolicy.
func ParseSplitPolicy(value string) (SplitPolicy, error) {
	for _, candidate := range validSplitPolicies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid split policy %q", value)
}
