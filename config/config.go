// Package config loads runtime settings: built-in defaults, then an optional
// YAML file, then BILLING_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"rabilling/services"
)

const (
	// DefaultPath is read when BILLING_CONFIG is unset.
	DefaultPath = "billing.yaml"

	envPrefix = "BILLING_"
)

// Company is the supplier block printed on invoices.
type Company struct {
	Name      string `yaml:"name"`
	Address   string `yaml:"address"`
	Email     string `yaml:"email"`
	GSTIN     string `yaml:"gstin"`
	StateCode string `yaml:"state_code"`
}

// Config holds the runtime configuration.
type Config struct {
	DataDir       string  `yaml:"data_dir"`
	SeedDemo      bool    `yaml:"seed_demo"`
	InvoicePrefix string  `yaml:"invoice_prefix"`
	Company       Company `yaml:"company"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:       "pb_data",
		InvoicePrefix: "RA",
	}
}

// Path returns the config file location, honouring BILLING_CONFIG.
func Path() string {
	if p := os.Getenv(envPrefix + "CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// Load builds the configuration from defaults, the YAML file at path (a
// missing file is not an error) and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}

	if cfg.InvoicePrefix == "" {
		cfg.InvoicePrefix = "RA"
	}
	cfg.Company.GSTIN = strings.ToUpper(strings.TrimSpace(cfg.Company.GSTIN))
	if cfg.Company.StateCode == "" {
		cfg.Company.StateCode = services.StateCodeFromGSTIN(cfg.Company.GSTIN)
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return cfg, fmt.Errorf("invalid config: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DATA_DIR":           &cfg.DataDir,
		"INVOICE_PREFIX":     &cfg.InvoicePrefix,
		"COMPANY_NAME":       &cfg.Company.Name,
		"COMPANY_ADDRESS":    &cfg.Company.Address,
		"COMPANY_EMAIL":      &cfg.Company.Email,
		"COMPANY_GSTIN":      &cfg.Company.GSTIN,
		"COMPANY_STATE_CODE": &cfg.Company.StateCode,
	}
	for key, dst := range strs {
		if v, ok := lookup(envPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "SEED_DEMO"); ok {
		b, err := cast.ToBoolE(v)
		if err != nil {
			return fmt.Errorf("%sSEED_DEMO: %w", envPrefix, err)
		}
		cfg.SeedDemo = b
	}
	return nil
}

// Validate checks the company block. It returns one message per problem.
func (c Config) Validate() []string {
	fieldErrs := services.ValidatePartyFields(map[string]string{
		"gstin":      c.Company.GSTIN,
		"state_code": c.Company.StateCode,
		"email":      c.Company.Email,
	})

	var errs []string
	for _, key := range []string{"gstin", "state_code", "email"} {
		if msg, ok := fieldErrs[key]; ok {
			errs = append(errs, "company."+key+": "+msg)
		}
	}
	return errs
}

// CompanyInfo converts the company block for invoice exports.
func (c Config) CompanyInfo() services.CompanyInfo {
	return services.CompanyInfo{
		Name:      c.Company.Name,
		Address:   c.Company.Address,
		Email:     c.Company.Email,
		GSTIN:     c.Company.GSTIN,
		StateCode: c.Company.StateCode,
	}
}

// GuardSettings returns the commit guard settings.
func (c Config) GuardSettings() services.GuardSettings {
	return services.GuardSettings{
		NumberPrefix:      c.InvoicePrefix,
		SupplierStateCode: c.Company.StateCode,
	}
}
