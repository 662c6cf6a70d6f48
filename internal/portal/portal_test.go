package portal

import (
	"errors"

	"claimpilot/internal/claims"
	"claimpilot/internal/config"
	"claimpilot/internal/driver"
)

var errTest = errors.New("portal flaked")

// newPortalScript builds a scripted driver exposing the full fake
// portal: login form, claims tab, global filters, the listing grid with
// its column filters, and the claim edit form.
func newPortalScript(listingEntries int) *driver.Script {
	s := driver.NewScript()

	// Login form
	s.AddVisible("#username", "")
	s.AddVisible("#password", "")
	s.AddVisible("form.login button[type='submit']", "")

	// Navigation
	s.AddVisible("nav a[data-tab='claims']", "Claims")

	// Global filters and their dropdown options
	s.AddVisible("div.global-filters div.select", "Entity Source")
	s.AddVisible("div.global-filters div.select", "Assessment")
	s.AddVisible(selDialogOption, "EHR")
	s.AddVisible(selDialogOption, "Completed")

	// Row-scoped column filters
	s.AddVisible("table.claims-grid thead input[data-column='Custom ID']", "")
	s.AddVisible("table.claims-grid thead input[data-column='MRN']", "")
	s.AddVisible("table.claims-grid thead input[data-column='Appointment Date']", "")

	// Listing entries
	for i := 0; i < listingEntries; i++ {
		s.AddVisible(selListingRow, "entry")
	}

	// Claim edit form
	s.AddVisible("#edit-claim", "Edit")
	s.AddVisible("input[name='service_date']", "")
	s.AddVisible("input[name='diagnosis_code']", "")
	s.AddVisible(selDiagnosisItem, "E11.9 - Type 2 diabetes mellitus without complications")
	s.AddVisible(selDiagnosisItem, "E11.65 - Type 2 diabetes mellitus with hyperglycemia")
	s.AddVisible("div.select[data-name='billing_classification']", "Billing")
	s.AddVisible(selDialogOption, "Billed")
	s.AddVisible(selDialogOption, "Appt. Cancelled")
	s.AddVisible("#save-claim", "Save")
	s.AddVisible("div.toast-success", "Claim saved")
	s.AddVisible("#back-to-listing", "Listing")

	return s
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Portal.BaseURL = "https://portal.example.test"
	cfg.Portal.Username = "svc"
	cfg.Portal.Password = "secret"
	cfg.Browser.SettleMs = 0
	cfg.Browser.LocateTimeoutMs = 50
	return cfg
}

func billableRow(n int) claims.InputRow {
	return claims.InputRow{
		RowNumber:                n,
		MRN:                      "MRN-001",
		CustomID:                 "C-9",
		DOS:                      "01/02/2025",
		AppointmentDate:          "01/02/2025",
		CPTCodes:                 []string{"99213"},
		ICDCode:                  "E11.9",
		RawBillingClassification: "Active",
	}
}

func cancelledRow(n int) claims.InputRow {
	r := billableRow(n)
	r.RawBillingClassification = "No Show"
	return r
}
