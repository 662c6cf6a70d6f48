package config

// PortalConfig configures the target portal: where it lives, how to log
// in, and which listing the claim entries appear on.
type PortalConfig struct {
	BaseURL     string `yaml:"base_url"`
	ListingPath string `yaml:"listing_path"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`

	// EntitySource and Assessment are the two global listing filters
	// applied once per run.
	EntitySource string `yaml:"entity_source"`
	Assessment   string `yaml:"assessment"`
}

// DefaultPortalConfig returns portal defaults. Credentials and the base
// URL come from the environment or the config file.
func DefaultPortalConfig() PortalConfig {
	return PortalConfig{
		ListingPath:  "/claims/listing",
		EntitySource: "EHR",
		Assessment:   "Completed",
	}
}
