package domain

import "time"

// Shop installation statuses
const (
	InstalledStatusInstalled   = "installed"
	InstalledStatusUninstalled = "uninstalled"
)

// Shop account statuses
const (
	ShopStatusActive = "active"
	ShopStatusPaused = "paused"
)

// Shop represents a merchant installation record, keyed by the
// myshopify storefront domain. Shops are never hard-deleted; uninstalling
// flips the status flags and keeps the record for history.
type Shop struct {
	Domain             string       `json:"shop"`
	AccessToken        string       `json:"-"`
	Scopes             []string     `json:"scopes"`
	InstalledStatus    string       `json:"installedStatus"`
	Status             string       `json:"status"`
	Plan               Plan         `json:"plan"`
	Settings           ShopSettings `json:"settings"`
	ExtensionActivated bool         `json:"extensionActivated"`
	OfferIDs           []string     `json:"offers"`
	OfferStats         OfferStats   `json:"offerStats"`
	OwnerName          string       `json:"shopUserName,omitempty"`
	SupportEmail       string       `json:"supportEmail,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// Plan holds basic billing info.
type Plan struct {
	Name          string     `json:"name"`
	BillingStatus string     `json:"billingStatus"`
	TrialEndsAt   *time.Time `json:"trialEndsAt,omitempty"`
}

// ShopSettings holds per-shop defaults applied to new offers.
type ShopSettings struct {
	DefaultDiscountType  string `json:"defaultDiscountType"`
	DefaultWidgetEnabled bool   `json:"defaultWidgetEnabled"`
	Currency             string `json:"currency"`
}

// OfferStats are eventually-consistent counters incremented when offers are
// created. They are never reconciled against the offers collection, so treat
// them as a display hint, not a source of truth.
type OfferStats struct {
	TotalOffers  int `json:"totalOffers"`
	ActiveOffers int `json:"activeOffers"`
}

// ShopInfo is the subset of platform shop data captured during installation.
type ShopInfo struct {
	Name         string
	Email        string
	ContactEmail string
	SupportEmail string
	CurrencyCode string
	PlanName     string
}

// SupportEmailOrFallback resolves the support email with the same priority
// the installation hook uses: supportEmail, then contactEmail, then email.
func (i ShopInfo) SupportEmailOrFallback() string {
	if i.SupportEmail != "" {
		return i.SupportEmail
	}
	if i.ContactEmail != "" {
		return i.ContactEmail
	}
	return i.Email
}
