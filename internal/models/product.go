package models

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Product is a catalog entry. Prices are in cents.
type Product struct {
	ID          int
	Name        string
	Description string
	Price       int64
	ImageURL    string
}

// Sort modes accepted by SortProducts
const (
	SortNameAsc   = "az"
	SortNameDesc  = "za"
	SortPriceAsc  = "lohi"
	SortPriceDesc = "hilo"
)

// Catalog errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrUnknownSort     = errors.New("unknown sort mode")
)

// Catalog is an immutable list of products
type Catalog struct {
	products []Product
}

// NewCatalog creates a catalog from products, rejecting duplicate IDs
func NewCatalog(products []Product) (*Catalog, error) {
	seen := make(map[int]bool, len(products))
	for _, p := range products {
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}
		if p.Price <= 0 {
			return nil, fmt.Errorf("%w: product %d", ErrInvalidAmount, p.ID)
		}
		seen[p.ID] = true
	}
	return &Catalog{products: slices.Clone(products)}, nil
}

// DefaultCatalog returns the six products of the demo shop
func DefaultCatalog() *Catalog {
	c, err := NewCatalog([]Product{
		{ID: 4, Name: "Sauce Labs Backpack", Price: 2999, ImageURL: "/static/img/sauce-backpack.jpg",
			Description: "carry.allTheThings() with the sleek, streamlined Sly Pack that melds uncompromising style with unequaled laptop and tablet protection."},
		{ID: 0, Name: "Sauce Labs Bike Light", Price: 999, ImageURL: "/static/img/bike-light.jpg",
			Description: "A red light isn't the desired state in testing but it sure helps when riding your bike at night. Water-resistant with 3 lighting modes, 1 AAA battery included."},
		{ID: 1, Name: "Sauce Labs Bolt T-Shirt", Price: 1599, ImageURL: "/static/img/bolt-shirt.jpg",
			Description: "Get your testing superhero on with the Sauce Labs bolt T-shirt. From American Apparel, 100% ringspun combed cotton, heather gray with red bolt."},
		{ID: 5, Name: "Sauce Labs Fleece Jacket", Price: 4999, ImageURL: "/static/img/sauce-pullover.jpg",
			Description: "It's not every day that you come across a midweight quarter-zip fleece jacket capable of handling everything from a relaxing day outdoors to a busy day at the office."},
		{ID: 2, Name: "Sauce Labs Onesie", Price: 799, ImageURL: "/static/img/red-onesie.jpg",
			Description: "Rib snap infant onesie for the junior automation engineer in development. Reinforced 3-snap bottom closure, two-needle hemmed sleeved and bottom won't unravel."},
		{ID: 3, Name: "Test.allTheThings() T-Shirt (Red)", Price: 1599, ImageURL: "/static/img/red-tatt.jpg",
			Description: "This classic Sauce Labs t-shirt is perfect to wear when cozying up to your keyboard to automate a few tests. Super-soft and comfy ringspun combed cotton."},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Products returns the products in catalog order
func (c *Catalog) Products() []Product {
	return slices.Clone(c.products)
}

// ByID looks a product up
func (c *Catalog) ByID(id int) (Product, error) {
	i := slices.IndexFunc(c.products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return Product{}, fmt.Errorf("%w: id %d", ErrProductNotFound, id)
	}
	return c.products[i], nil
}

// Sorted returns the products ordered by mode. An empty mode is name ascending.
func (c *Catalog) Sorted(mode string) ([]Product, error) {
	out := c.Products()
	var cmp func(a, b Product) int
	switch mode {
	case "", SortNameAsc:
		cmp = func(a, b Product) int { return strings.Compare(a.Name, b.Name) }
	case SortNameDesc:
		cmp = func(a, b Product) int { return strings.Compare(b.Name, a.Name) }
	case SortPriceAsc:
		cmp = func(a, b Product) int { return compareInt64(a.Price, b.Price) }
	case SortPriceDesc:
		cmp = func(a, b Product) int { return compareInt64(b.Price, a.Price) }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSort, mode)
	}
	slices.SortStableFunc(out, cmp)
	return out, nil
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// FormatPrice renders cents as "$29.99"
func FormatPrice(cents int64) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
