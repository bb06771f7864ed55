// Package draft holds the in-progress, not-yet-persisted state of a
// project edit screen: the project name, the ordered vendor cards and the
// sharing list. Every mutation validates locally and fails softly with a
// sentinel error; nothing here touches the store.
package draft

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Bid2Bid/bid2bid-backend/internal/currency"
)

const (
	// MaxVendorsFree is the vendor-card cap for accounts without an
	// active subscription. Subscribed accounts are uncapped.
	MaxVendorsFree = 10
	// MaxShares caps invitee emails per project regardless of entitlement.
	MaxShares = 5
	// MaxVendorNameLen mirrors the input maxLength on the vendor card.
	MaxVendorNameLen = 40

	// LocalIDPrefix marks ids assigned before the first successful save.
	// The store replaces them with server-assigned ids on insert.
	LocalIDPrefix = "local-"
)

var (
	ErrVendorLimit     = errors.New("you can only add up to 10 vendor cards")
	ErrLastVendor      = errors.New("you must have at least one vendor card")
	ErrInvalidEmail    = errors.New("please enter a valid email address")
	ErrDuplicateEmail  = errors.New("this email is already in the sharing list")
	ErrShareLimit      = errors.New("you can share with up to 5 people maximum")
	ErrInvalidDuration = errors.New("job duration must be 1-10 days or 10+")
	ErrUpgradeRequired = errors.New("upgrade required")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Vendor is one card as the user sees it. TotalCost holds the sanitized
// live value; the canonical number is derived on save.
type Vendor struct {
	ID          string `json:"id"`
	VendorName  string `json:"vendor_name"`
	PhoneNumber string `json:"phone_number"`
	StartDate   string `json:"start_date"`
	JobDuration string `json:"job_duration"`
	TotalCost   string `json:"total_cost"`
	IsFavorite  bool   `json:"is_favorite"`
}

// Draft is the editable state for one project.
type Draft struct {
	ProjectID    string   `json:"project_id"`
	Name         string   `json:"name"`
	Vendors      []Vendor `json:"vendors"`
	SharedEmails []string `json:"shared_emails"`
}

// New returns a fresh draft with the single empty vendor card the edit
// screen always starts with.
func New() *Draft {
	d := &Draft{
		ProjectID: NewLocalID(),
		Vendors:   []Vendor{{ID: NewLocalID()}},
	}
	return d
}

// NewLocalID mints a draft-local identifier.
func NewLocalID() string {
	return LocalIDPrefix + uuid.New().String()
}

// IsLocalID reports whether id was minted locally and has never been
// persisted.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// AddVendor appends an empty card. The cap is 10 for unsubscribed
// accounts and lifted entirely for subscribed ones.
func (d *Draft) AddVendor(subscribed bool) (*Vendor, error) {
	if !subscribed && len(d.Vendors) >= MaxVendorsFree {
		return nil, ErrVendorLimit
	}
	d.Vendors = append(d.Vendors, Vendor{ID: NewLocalID()})
	return &d.Vendors[len(d.Vendors)-1], nil
}

// RemoveVendor deletes a card. The last remaining card can never be
// removed; an unknown id is a no-op.
func (d *Draft) RemoveVendor(id string) error {
	if len(d.Vendors) <= 1 {
		return ErrLastVendor
	}
	for i, v := range d.Vendors {
		if v.ID == id {
			d.Vendors = append(d.Vendors[:i], d.Vendors[i+1:]...)
			return nil
		}
	}
	return nil
}

// UpdateVendorField sets a named field on the vendor with the given id.
// Unknown ids are a silent no-op. Values are normalized the same way the
// input widgets normalize them: vendor names are truncated, costs are
// sanitized while typing, durations are validated against the select list.
func (d *Draft) UpdateVendorField(id, field, value string) error {
	v := d.vendor(id)
	if v == nil {
		return nil
	}

	switch field {
	case "vendor_name":
		v.VendorName = TruncateName(value)
	case "phone_number":
		v.PhoneNumber = value
	case "start_date":
		v.StartDate = value
	case "job_duration":
		if !ValidJobDuration(value) {
			return ErrInvalidDuration
		}
		v.JobDuration = value
	case "total_cost":
		v.TotalCost = currency.Sanitize(value)
	}
	return nil
}

// CommitCost is the blur-time formatting of a vendor's cost field.
func (d *Draft) CommitCost(id string) {
	if v := d.vendor(id); v != nil {
		v.TotalCost = currency.Format(v.TotalCost)
	}
}

// ToggleFavorite flips the favorite flag on the vendor with the given id.
// Setting it clears the flag on every sibling in the same pass, so at most
// one card is ever favorited.
func (d *Draft) ToggleFavorite(id string) {
	target := d.vendor(id)
	if target == nil {
		return
	}
	next := !target.IsFavorite
	for i := range d.Vendors {
		d.Vendors[i].IsFavorite = false
	}
	target.IsFavorite = next
}

// AddEmail appends an invitee email to the sharing list. Sharing is a
// premium feature: the entitlement is checked before any other rule so an
// unsubscribed account always sees the upgrade prompt, not a count error.
func (d *Draft) AddEmail(email string, subscribed bool) error {
	if !subscribed {
		return ErrUpgradeRequired
	}

	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	for _, e := range d.SharedEmails {
		if strings.EqualFold(e, email) {
			return ErrDuplicateEmail
		}
	}
	if len(d.SharedEmails) >= MaxShares {
		return ErrShareLimit
	}

	d.SharedEmails = append(d.SharedEmails, email)
	return nil
}

// RemoveEmail drops an invitee email; unknown emails are a no-op.
func (d *Draft) RemoveEmail(email string) {
	for i, e := range d.SharedEmails {
		if strings.EqualFold(e, email) {
			d.SharedEmails = append(d.SharedEmails[:i], d.SharedEmails[i+1:]...)
			return
		}
	}
}

// Validate reports whether the draft may be persisted at all.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return ErrNameRequired
	}
	return nil
}

// ErrNameRequired blocks persistence of a nameless project.
var ErrNameRequired = errors.New("please enter a project name before saving")

// ValidEmail reports whether e matches the basic invitee email pattern.
func ValidEmail(e string) bool {
	return emailPattern.MatchString(e)
}

// TruncateName enforces the vendor-name widget limit. The limit counts
// characters, so multibyte names are never cut mid-rune.
func TruncateName(name string) string {
	if r := []rune(name); len(r) > MaxVendorNameLen {
		return string(r[:MaxVendorNameLen])
	}
	return name
}

// ValidJobDuration accepts the select-list values: empty, 1-10, or "10+".
func ValidJobDuration(v string) bool {
	if v == "" || v == "10+" {
		return true
	}
	n, err := strconv.Atoi(v)
	return err == nil && n >= 1 && n <= 10
}

func (d *Draft) vendor(id string) *Vendor {
	for i := range d.Vendors {
		if d.Vendors[i].ID == id {
			return &d.Vendors[i]
		}
	}
	return nil
}
