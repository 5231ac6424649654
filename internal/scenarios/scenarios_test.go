package scenarios

import (
	"testing"

	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogins_Partition(t *testing.T) {
	all := Logins()
	valid := ValidLogins()
	invalid := InvalidLogins()

	assert.Len(t, all, 8)
	assert.Len(t, valid, 3)
	assert.Len(t, invalid, 5)
	for _, l := range valid {
		assert.True(t, l.Valid, l.Description)
		assert.Empty(t, l.Kind, l.Description)
	}
	for _, l := range invalid {
		assert.False(t, l.Valid, l.Description)
		assert.NotEmpty(t, l.Kind, l.Description)
	}
}

func TestLogins_CopiesAreIndependent(t *testing.T) {
	rows := Logins()
	rows[0].Username = "changed"

	assert.Equal(t, "standard_user", Logins()[0].Username)
}

func TestLoginFor(t *testing.T) {
	row, ok := LoginFor("Locked out user")
	require.True(t, ok)
	assert.Equal(t, "locked_out_user", row.Username)
	assert.Equal(t, pages.LoginLockedOut, row.Kind)

	_, ok = LoginFor("nope")
	assert.False(t, ok)
}

func TestCheckouts_Partition(t *testing.T) {
	assert.Len(t, ValidCheckouts(), 2)
	for _, c := range InvalidCheckouts() {
		assert.Contains(t, c.Error, "is required", c.Description)
	}
}

func TestProductNames(t *testing.T) {
	assert.Equal(t, []string{
		"Sauce Labs Backpack",
		"Sauce Labs Bike Light",
		"Sauce Labs Bolt T-Shirt",
		"Sauce Labs Fleece Jacket",
	}, ProductNames())
}
