package config

// BillingConfig configures billing classification and coding.
type BillingConfig struct {
	// Sentinel is the single classification value meaning the appointment
	// is active and billable. Anything else, including empty, is treated
	// as cancelled.
	Sentinel string `yaml:"sentinel"`

	// DefaultICD is used for diagnosis-code selection when a row carries
	// no ICD of its own.
	DefaultICD string `yaml:"default_icd"`

	// ServiceDateFormat is the date layout the portal's service-date
	// field expects.
	ServiceDateFormat string `yaml:"service_date_format"`
}

// DefaultBillingConfig returns billing defaults.
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		Sentinel:          "Active",
		DefaultICD:        "Z00.00",
		ServiceDateFormat: "01/02/2006",
	}
}
