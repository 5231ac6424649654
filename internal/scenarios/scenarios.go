// Package scenarios holds the data tables that drive parameterized tests.
// Rows are values; callers get copies and cannot change the tables.
package scenarios

import (
	"github.com/adyen/storefront-e2e/internal/pages"
	"github.com/samber/lo"
)

// Login is one credential combination
type Login struct {
	Username    string
	Password    string
	Description string
	Valid       bool
	// Kind is the expected error category of an invalid row
	Kind pages.LoginErrorKind
}

// Checkout is one shipping form combination
type Checkout struct {
	FirstName   string
	LastName    string
	PostalCode  string
	Description string
	Valid       bool
	// Error is the banner an invalid row produces
	Error string
}

// Product is a catalog entry the suites look up by name
type Product struct {
	Name        string
	Description string
}

var logins = []Login{
	{Username: "standard_user", Password: "secret_sauce", Description: "Valid standard user credentials", Valid: true},
	{Username: "problem_user", Password: "secret_sauce", Description: "Valid problem user credentials", Valid: true},
	{Username: "performance_glitch_user", Password: "secret_sauce", Description: "Valid performance glitch user credentials", Valid: true},
	{Username: "locked_out_user", Password: "secret_sauce", Description: "Locked out user", Kind: pages.LoginLockedOut},
	{Username: "invalid_user", Password: "wrong_password", Description: "Invalid username and password", Kind: pages.LoginMismatch},
	{Username: "standard_user", Password: "wrong_password", Description: "Valid username but wrong password", Kind: pages.LoginMismatch},
	{Username: "", Password: "secret_sauce", Description: "Empty username", Kind: pages.LoginMissingUsername},
	{Username: "standard_user", Password: "", Description: "Empty password", Kind: pages.LoginMissingPassword},
}

var checkouts = []Checkout{
	{FirstName: "John", LastName: "Doe", PostalCode: "12345", Description: "Valid checkout form data", Valid: true},
	{FirstName: "Jane", LastName: "Smith", PostalCode: "54321", Description: "Another valid checkout user", Valid: true},
	{FirstName: "", LastName: "Doe", PostalCode: "12345", Description: "Missing first name", Error: "Error: First Name is required"},
	{FirstName: "John", LastName: "", PostalCode: "12345", Description: "Missing last name", Error: "Error: Last Name is required"},
	{FirstName: "John", LastName: "Doe", PostalCode: "", Description: "Missing postal code", Error: "Error: Postal Code is required"},
	{FirstName: "", LastName: "", PostalCode: "", Description: "All fields empty", Error: "Error: First Name is required"},
}

var products = []Product{
	{Name: "Sauce Labs Backpack", Description: "A robust and practical backpack for your shopping needs"},
	{Name: "Sauce Labs Bike Light", Description: "A bright bike light for your safety"},
	{Name: "Sauce Labs Bolt T-Shirt", Description: "A comfortable t-shirt with lightning bolt design"},
	{Name: "Sauce Labs Fleece Jacket", Description: "A warm and cozy fleece jacket"},
}

// Logins returns every credential row
func Logins() []Login {
	return append([]Login(nil), logins...)
}

// ValidLogins returns the rows expected to reach the catalog
func ValidLogins() []Login {
	return lo.Filter(logins, func(l Login, _ int) bool { return l.Valid })
}

// InvalidLogins returns the rows expected to be rejected
func InvalidLogins() []Login {
	return lo.Reject(logins, func(l Login, _ int) bool { return l.Valid })
}

// LoginFor returns the first row with the given description
func LoginFor(description string) (Login, bool) {
	return lo.Find(logins, func(l Login) bool { return l.Description == description })
}

// Checkouts returns every shipping form row
func Checkouts() []Checkout {
	return append([]Checkout(nil), checkouts...)
}

// ValidCheckouts returns the rows the form accepts
func ValidCheckouts() []Checkout {
	return lo.Filter(checkouts, func(c Checkout, _ int) bool { return c.Valid })
}

// InvalidCheckouts returns the rows the form rejects
func InvalidCheckouts() []Checkout {
	return lo.Reject(checkouts, func(c Checkout, _ int) bool { return c.Valid })
}

// Products returns the product rows
func Products() []Product {
	return append([]Product(nil), products...)
}

// ProductNames returns the names of the product rows
func ProductNames() []string {
	return lo.Map(products, func(p Product, _ int) string { return p.Name })
}
