package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = "8080"
	defaultResendBaseURL = "https://api.resend.com"

	// DefaultHTTPTimeout bounds each outbound provider call.
	DefaultHTTPTimeout = 10 * time.Second
)

// Site holds the identity used in outbound email and list tags.
type Site struct {
	Name          string `yaml:"name"`
	URL           string `yaml:"url"`
	FromAddress   string `yaml:"from_address"`
	OperatorInbox string `yaml:"operator_inbox"`
	SignupTag     string `yaml:"signup_tag"`
	InterestTag   string `yaml:"interest_tag"`
	Signature     string `yaml:"signature"`
}

// Config holds all application configuration values
type Config struct {
	MailchimpAPIKey     string
	MailchimpAudienceID string
	MailchimpBaseURL    string // empty: derived from the API key's data center
	ResendAPIKey        string
	ResendBaseURL       string
	Port                string
	FrontendURL         string
	LogLevel            string
	HTTPTimeout         time.Duration
	Site                Site
}

// DefaultSite returns the site identity used when no config file overrides it.
func DefaultSite() Site {
	return Site{
		Name:          "Multiball Academy",
		URL:           "https://multiballacademy.com",
		FromAddress:   "Multiball Academy <hello@multiballacademy.com>",
		OperatorInbox: "hello@multiballacademy.com",
		SignupTag:     "website-signup",
		InterestTag:   "coach-interest",
		Signature:     "Scott",
	}
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	cfg := &Config{
		MailchimpAPIKey:     os.Getenv("MAILCHIMP_API_KEY"),
		MailchimpAudienceID: os.Getenv("MAILCHIMP_AUDIENCE_ID"),
		MailchimpBaseURL:    os.Getenv("MAILCHIMP_BASE_URL"),
		ResendAPIKey:        os.Getenv("RESEND_API_KEY"),
		ResendBaseURL:       os.Getenv("RESEND_BASE_URL"),
		Port:                os.Getenv("PORT"),
		FrontendURL:         os.Getenv("FRONTEND_URL"),
		LogLevel:            os.Getenv("LOG_LEVEL"),
		HTTPTimeout:         DefaultHTTPTimeout,
		Site:                DefaultSite(),
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "*"
	}
	if cfg.ResendBaseURL == "" {
		cfg.ResendBaseURL = defaultResendBaseURL
	}
	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.HTTPTimeout = d
		}
	}

	return cfg
}

// LoadSiteFile overlays non-empty values from a YAML file onto cfg.Site.
func (c *Config) LoadSiteFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading site config: %w", err)
	}

	var file struct {
		Site Site `yaml:"site"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("error parsing site config: %w", err)
	}

	s := file.Site
	overlay(&c.Site.Name, s.Name)
	overlay(&c.Site.URL, s.URL)
	overlay(&c.Site.FromAddress, s.FromAddress)
	overlay(&c.Site.OperatorInbox, s.OperatorInbox)
	overlay(&c.Site.SignupTag, s.SignupTag)
	overlay(&c.Site.InterestTag, s.InterestTag)
	overlay(&c.Site.Signature, s.Signature)
	return nil
}

// Validate reports missing credentials needed to talk to the list provider.
func (c *Config) Validate() error {
	var missing []string
	if c.MailchimpAPIKey == "" {
		missing = append(missing, "MAILCHIMP_API_KEY")
	}
	if c.MailchimpAudienceID == "" {
		missing = append(missing, "MAILCHIMP_AUDIENCE_ID")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func overlay(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
