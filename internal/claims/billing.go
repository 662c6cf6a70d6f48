package claims

import "strings"

// Billing classification labels as exposed by the portal's edit form.
const (
	LabelBilled        = "Billed"
	LabelApptCancelled = "Appt. Cancelled"
	DefaultSentinel    = "Active"
)

// IsBillable reports whether a raw billing classification matches the
// configured sentinel. The comparison is case-insensitive and ignores
// surrounding whitespace; any non-match, including empty, means the
// appointment is treated as cancelled.
func IsBillable(raw, sentinel string) bool {
	if sentinel == "" {
		sentinel = DefaultSentinel
	}
	return strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(sentinel))
}

// BillingLabel maps a billable decision to the portal form label.
func BillingLabel(billable bool) string {
	if billable {
		return LabelBilled
	}
	return LabelApptCancelled
}

// StatusForBilling maps a billable decision to the recorded status.
func StatusForBilling(billable bool) Status {
	if billable {
		return StatusBilled
	}
	return StatusAppointmentCancelled
}
