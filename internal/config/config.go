// Package config defines the necessary types to configure the application.
// An example config file config.yaml is provided in the repository.
package config

import (
	"time"

	"github.com/openkcm/common-sdk/pkg/commoncfg"

	"github.com/SilviuMajor/total-dash-sub001/internal/tenant"
)

type Config struct {
	commoncfg.BaseConfig `mapstructure:",squash" yaml:",inline"`

	HTTP HTTPServer `yaml:"http"`
	GRPC GRPCServer `yaml:"grpc"`

	Database Database `yaml:"database"`
	ValKey   ValKey   `yaml:"valkey"`
	Migrate  Migrate  `yaml:"migrate"`
	Resolver Resolver `yaml:"resolver"`
	Verifier Verifier `yaml:"verifier"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
	// AllowedOrigin is returned in Access-Control-Allow-Origin.
	AllowedOrigin string `yaml:"allowedOrigin" default:"*"`
}

type GRPCServer struct {
	commoncfg.GRPCServer `mapstructure:",squash" yaml:",inline"`

	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" default:"5s"`
}

type Database struct {
	Name     string              `yaml:"name"`
	Port     string              `yaml:"port"`
	SSLMode  string              `yaml:"sslMode"`
	Host     commoncfg.SourceRef `yaml:"host"`
	User     commoncfg.SourceRef `yaml:"user"`
	Password commoncfg.SourceRef `yaml:"password"`
}

// ValKey configures the shared directory cache. It is disabled when Host
// resolves to an empty value.
type ValKey struct {
	Host      commoncfg.SourceRef `yaml:"host"`
	User      commoncfg.SourceRef `yaml:"user"`
	Password  commoncfg.SourceRef `yaml:"password"`
	Prefix    string              `yaml:"prefix" default:"tenant-resolver"`
	SecretRef commoncfg.SecretRef `yaml:"secretRef"`
	TTL       time.Duration       `yaml:"ttl" default:"1m"`
}

type Migrate struct {
	Source string `yaml:"source" default:"file://./sql"`
}

// Resolver configures classification and the in-process context cache.
// Empty lists keep the built-in defaults.
type Resolver struct {
	CacheTTL           time.Duration `yaml:"cacheTTL" default:"5m"`
	CacheHighWaterMark int           `yaml:"cacheHighWaterMark" default:"1000"`

	PlatformDomains     []string `yaml:"platformDomains"`
	AdminSubdomain      string   `yaml:"adminSubdomain"`
	SuperAdminPrefixes  []string `yaml:"superAdminPrefixes"`
	AgencyLoginPrefixes []string `yaml:"agencyLoginPrefixes"`
	WhitelabelMarkers   []string `yaml:"whitelabelMarkers"`
}

type Verifier struct {
	Interval         time.Duration `yaml:"interval" default:"5m"`
	DNSServer        string        `yaml:"dnsServer" default:"1.1.1.1:53"`
	RecordPrefix     string        `yaml:"recordPrefix" default:"_total-dash-verification"`
	ConcurrencyLimit int           `yaml:"concurrencyLimit" default:"4"`
	Timeout          time.Duration `yaml:"timeout" default:"5s"`
}

// Rules returns the classification rules, starting from the defaults.
func (r Resolver) Rules() tenant.Rules {
	rules := tenant.DefaultRules()
	if len(r.PlatformDomains) > 0 {
		rules.PlatformDomains = r.PlatformDomains
	}
	if r.AdminSubdomain != "" {
		rules.AdminSubdomain = r.AdminSubdomain
	}
	if len(r.SuperAdminPrefixes) > 0 {
		rules.SuperAdminPrefixes = r.SuperAdminPrefixes
	}
	if len(r.AgencyLoginPrefixes) > 0 {
		rules.AgencyLoginPrefixes = r.AgencyLoginPrefixes
	}
	if len(r.WhitelabelMarkers) > 0 {
		rules.WhitelabelMarkers = r.WhitelabelMarkers
	}
	return rules
}
