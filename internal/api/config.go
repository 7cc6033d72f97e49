package api

// DefaultNamePrefix is the prefix every registered name must carry when
// validation is enabled.
const DefaultNamePrefix = "quiver__"

// RegistryConfig is the static policy a registry is constructed with.
// It is read-only once the registry exists.
type RegistryConfig struct {
	// ValidateOnRegister runs the entry validator on every registration.
	ValidateOnRegister bool `yaml:"validateOnRegister" json:"validateOnRegister" mapstructure:"validateOnRegister"`

	// AllowDuplicateNames makes re-registration overwrite in place instead of failing.
	AllowDuplicateNames bool `yaml:"allowDuplicateNames" json:"allowDuplicateNames" mapstructure:"allowDuplicateNames"`

	// EnforceVersioning rejects overwrites that supply a lower version than the stored one.
	EnforceVersioning bool `yaml:"enforceVersioning" json:"enforceVersioning" mapstructure:"enforceVersioning"`

	// MaxRetries is advisory metadata for callers; dispatch is at-most-once.
	MaxRetries int `yaml:"maxRetries" json:"maxRetries" mapstructure:"maxRetries"`

	// EnableLogging controls informational registry logging. Warnings are always emitted.
	EnableLogging bool `yaml:"enableLogging" json:"enableLogging" mapstructure:"enableLogging"`

	// NamePrefix is required on every name when ValidateOnRegister is set.
	NamePrefix string `yaml:"namePrefix" json:"namePrefix" mapstructure:"namePrefix"`
}

// DefaultRegistryConfig returns the configuration used when none is supplied.
func DefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		ValidateOnRegister:  true,
		AllowDuplicateNames: false,
		EnforceVersioning:   false,
		MaxRetries:          3,
		EnableLogging:       true,
		NamePrefix:          DefaultNamePrefix,
	}
}
