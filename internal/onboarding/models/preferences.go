package models

import (
	"strings"
	"time"

	dErrors "onboarding/pkg/domain-errors"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

type QuoteCurrency string

const (
	QuoteUSDC QuoteCurrency = "USDC"
	QuoteUSD  QuoteCurrency = "USD"
	QuoteEUR  QuoteCurrency = "EUR"
)

func (q QuoteCurrency) IsValid() bool {
	return q == QuoteUSDC || q == QuoteUSD || q == QuoteEUR
}

type Preferences struct {
	EmailNotifications bool          `json:"email_notifications"`
	PushNotifications  bool          `json:"push_notifications"`
	PriceAlerts        bool          `json:"price_alerts"`
	MarketingEmails    bool          `json:"marketing_emails"`
	ShowHints          bool          `json:"show_hints"`
	Theme              Theme         `json:"theme"`
	DefaultQuote       QuoteCurrency `json:"default_quote"`
	UpdatedAt          time.Time     `json:"updated_at,omitzero"`
}

// DefaultPreferences is served to readers before the preferences step runs.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		PushNotifications:  true,
		PriceAlerts:        true,
		MarketingEmails:    false,
		ShowHints:          true,
		Theme:              ThemeSystem,
		DefaultQuote:       QuoteUSDC,
	}
}

func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// PreferencesRequest is the preferences step payload. Every boolean is required.
type PreferencesRequest struct {
	EmailNotifications *bool  `json:"email_notifications"`
	PushNotifications  *bool  `json:"push_notifications"`
	PriceAlerts        *bool  `json:"price_alerts"`
	MarketingEmails    *bool  `json:"marketing_emails"`
	ShowHints          *bool  `json:"show_hints"`
	Theme              string `json:"theme"`
	DefaultQuote       string `json:"default_quote"`
}

func (r *PreferencesRequest) Normalize() {
	if r == nil {
		return
	}
	r.Theme = strings.ToLower(strings.TrimSpace(r.Theme))
	r.DefaultQuote = strings.ToUpper(strings.TrimSpace(r.DefaultQuote))
}

func (r *PreferencesRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeValidation, "request is required")
	}
	if r.EmailNotifications == nil || r.PushNotifications == nil || r.PriceAlerts == nil ||
		r.MarketingEmails == nil || r.ShowHints == nil {
		return dErrors.New(dErrors.CodeValidation,
			"email_notifications, push_notifications, price_alerts, marketing_emails and show_hints are required")
	}
	if !Theme(r.Theme).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "theme must be one of light, dark, system")
	}
	if !QuoteCurrency(r.DefaultQuote).IsValid() {
		return dErrors.New(dErrors.CodeValidation, "default_quote must be one of USDC, USD, EUR")
	}
	return nil
}

func (r *PreferencesRequest) ToPreferences(now time.Time) *Preferences {
	return &Preferences{
		EmailNotifications: *r.EmailNotifications,
		PushNotifications:  *r.PushNotifications,
		PriceAlerts:        *r.PriceAlerts,
		MarketingEmails:    *r.MarketingEmails,
		ShowHints:          *r.ShowHints,
		Theme:              Theme(r.Theme),
		DefaultQuote:       QuoteCurrency(r.DefaultQuote),
		UpdatedAt:          now,
	}
}
