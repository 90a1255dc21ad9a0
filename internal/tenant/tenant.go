package tenant

import (
	"time"
)

// Tenant represents an organizational unit (e.g. a clinic) with its own
// settings and feature flags.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Settings  Settings  `json:"settings"`
	CreatedAt time.Time `json:"created_at"`
}

// Settings holds the mutable per-tenant configuration.
type Settings struct {
	ClaimAccounts []ClaimAccount `json:"claim_accounts"`
	Features      []string       `json:"features"`
}

// ClaimAccount is a clearinghouse sub-account. The API key is an opaque
// secret: it is passed through unchanged and never logged.
type ClaimAccount struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	APIKey string `json:"api_key"`
}

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultFeatures is applied at creation when the request omits features.
var DefaultFeatures = []string{"patients", "claims", "insurance"}

// Patch describes a partial tenant update. Nil fields are absent from the
// patch and leave the current value untouched.
type Patch struct {
	Name     *string        `json:"name"`
	Status   *string        `json:"status"`
	Settings *SettingsPatch `json:"settings"`
}

// SettingsPatch merges shallowly into Settings: a non-nil key replaces
// that key wholesale, a nil key keeps the existing value.
type SettingsPatch struct {
	ClaimAccounts *[]ClaimAccount `json:"claim_accounts"`
	Features      *[]string       `json:"features"`
}

// Apply merges a patch into the tenant. Name and status are field-level
// overwrites; settings merge key by key.
func (t *Tenant) Apply(p Patch) {
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Settings != nil {
		t.Settings.Merge(*p.Settings)
	}
}

// Merge applies a shallow settings merge: keys present in the patch win,
// keys absent from the patch retain their prior value.
func (s *Settings) Merge(p SettingsPatch) {
	if p.ClaimAccounts != nil {
		s.ClaimAccounts = append([]ClaimAccount(nil), (*p.ClaimAccounts)...)
	}
	if p.Features != nil {
		s.Features = append([]string(nil), (*p.Features)...)
	}
}

// Clone returns a deep copy so callers never alias store-owned state.
func (t *Tenant) Clone() *Tenant {
	c := *t
	c.Settings.ClaimAccounts = append([]ClaimAccount(nil), t.Settings.ClaimAccounts...)
	c.Settings.Features = append([]string(nil), t.Settings.Features...)
	return &c
}
