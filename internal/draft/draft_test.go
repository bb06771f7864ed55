package draft

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStartsWithOneCard(t *testing.T) {
	d := New()
	require.Len(t, d.Vendors, 1)
	assert.True(t, IsLocalID(d.ProjectID))
	assert.True(t, IsLocalID(d.Vendors[0].ID))
}

func TestAddVendorCap(t *testing.T) {
	d := New()
	for i := len(d.Vendors); i < MaxVendorsFree; i++ {
		_, err := d.AddVendor(false)
		require.NoError(t, err)
	}
	require.Len(t, d.Vendors, MaxVendorsFree)

	_, err := d.AddVendor(false)
	assert.ErrorIs(t, err, ErrVendorLimit)
	assert.Len(t, d.Vendors, MaxVendorsFree)

	// a subscription lifts the cap
	_, err = d.AddVendor(true)
	require.NoError(t, err)
	assert.Len(t, d.Vendors, MaxVendorsFree+1)
}

func TestRemoveVendor(t *testing.T) {
	d := New()
	v, err := d.AddVendor(false)
	require.NoError(t, err)

	require.NoError(t, d.RemoveVendor(v.ID))
	require.Len(t, d.Vendors, 1)

	// the last card can never be deleted
	err = d.RemoveVendor(d.Vendors[0].ID)
	assert.ErrorIs(t, err, ErrLastVendor)
	assert.Len(t, d.Vendors, 1)
}

func TestUpdateVendorField(t *testing.T) {
	d := New()
	id := d.Vendors[0].ID

	require.NoError(t, d.UpdateVendorField(id, "vendor_name", "Acme Co"))
	assert.Equal(t, "Acme Co", d.Vendors[0].VendorName)

	// names are truncated to the widget limit
	long := strings.Repeat("x", MaxVendorNameLen+5)
	require.NoError(t, d.UpdateVendorField(id, "vendor_name", long))
	assert.Len(t, d.Vendors[0].VendorName, MaxVendorNameLen)

	// unknown id is a no-op, not an error
	require.NoError(t, d.UpdateVendorField("nope", "vendor_name", "Ghost"))
	assert.Equal(t, long[:MaxVendorNameLen], d.Vendors[0].VendorName)

	// live cost input is sanitized, not formatted
	require.NoError(t, d.UpdateVendorField(id, "total_cost", "$1,234.5"))
	assert.Equal(t, "1234.5", d.Vendors[0].TotalCost)

	d.CommitCost(id)
	assert.Equal(t, "$1,234.50", d.Vendors[0].TotalCost)

	assert.ErrorIs(t, d.UpdateVendorField(id, "job_duration", "11"), ErrInvalidDuration)
	require.NoError(t, d.UpdateVendorField(id, "job_duration", "10+"))
	assert.Equal(t, "10+", d.Vendors[0].JobDuration)
}

func TestTruncateNameCountsCharacters(t *testing.T) {
	long := strings.Repeat("日", MaxVendorNameLen+5)
	got := TruncateName(long)
	assert.Equal(t, MaxVendorNameLen, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got), "truncation must never cut mid-rune")

	// over 40 bytes but within the character limit stays intact
	short := strings.Repeat("日", 14)
	assert.Equal(t, short, TruncateName(short))
}

func TestToggleFavoriteIsExclusive(t *testing.T) {
	d := New()
	a := d.Vendors[0].ID
	vb, _ := d.AddVendor(false)
	vc, _ := d.AddVendor(false)
	b, c := vb.ID, vc.ID

	d.ToggleFavorite(a)
	assert.True(t, d.vendor(a).IsFavorite)

	d.ToggleFavorite(b)
	assert.False(t, d.vendor(a).IsFavorite)
	assert.True(t, d.vendor(b).IsFavorite)
	assert.False(t, d.vendor(c).IsFavorite)

	// toggling the current favorite clears it
	d.ToggleFavorite(b)
	for _, v := range d.Vendors {
		assert.False(t, v.IsFavorite)
	}
}

func TestAddEmail(t *testing.T) {
	d := New()

	// entitlement is checked before anything else
	err := d.AddEmail("b@x.com", false)
	assert.ErrorIs(t, err, ErrUpgradeRequired)
	assert.Empty(t, d.SharedEmails)

	assert.ErrorIs(t, d.AddEmail("not-an-email", true), ErrInvalidEmail)

	require.NoError(t, d.AddEmail("a@x.com", true))
	assert.ErrorIs(t, d.AddEmail("A@X.COM", true), ErrDuplicateEmail)

	for i := 1; i < MaxShares; i++ {
		require.NoError(t, d.AddEmail(fmt.Sprintf("u%d@x.com", i), true))
	}
	assert.ErrorIs(t, d.AddEmail("extra@x.com", true), ErrShareLimit)
	assert.Len(t, d.SharedEmails, MaxShares)
}

func TestRemoveEmail(t *testing.T) {
	d := New()
	require.NoError(t, d.AddEmail("a@x.com", true))
	d.RemoveEmail("A@x.com")
	assert.Empty(t, d.SharedEmails)

	d.RemoveEmail("ghost@x.com") // no-op
}

func TestValidate(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Validate(), ErrNameRequired)
	d.Name = "   "
	assert.ErrorIs(t, d.Validate(), ErrNameRequired)
	d.Name = "Office Remodel"
	assert.NoError(t, d.Validate())
}
