package enums

import "fmt"

// InquiryStatus tracks the lifecycle of an RFQ inquiry group.
type InquiryStatus string

const (
	InquiryStatusPending  InquiryStatus = "PENDING"
	InquiryStatusQuoted   InquiryStatus = "QUOTED"
	InquiryStatusAccepted InquiryStatus = "ACCEPTED"
	InquiryStatusRejected InquiryStatus = "REJECTED"
	InquiryStatusExpired  InquiryStatus = "EXPIRED"
)

var validInquiryStatuses = []InquiryStatus{
	InquiryStatusPending,
	InquiryStatusQuoted,
	InquiryStatusAccepted,
	InquiryStatusRejected,
	InquiryStatusExpired,
}

// String implements fmt.Stringer.
func (s InquiryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InquiryStatus.
func (s InquiryStatus) IsValid() bool {
	for _, candidate := range validInquiryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseInquiryStatus converts raw input into an InquiryStatus.
func ParseInquiryStatus(value string) (InquiryStatus, error) {
	for _, candidate := range validInquiryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inquiry status %q", value)
}
