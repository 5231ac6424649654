package models

import "slices"

// Cart holds product IDs in the order they were added. A product is in the
// cart at most once.
type Cart struct {
	ids []int
}

// Add puts a product in the cart and reports whether it was added
func (c *Cart) Add(id int) bool {
	if c.Contains(id) {
		return false
	}
	c.ids = append(c.ids, id)
	return true
}

// Remove takes a product out of the cart and reports whether it was there
func (c *Cart) Remove(id int) bool {
	i := slices.Index(c.ids, id)
	if i < 0 {
		return false
	}
	c.ids = slices.Delete(c.ids, i, i+1)
	return true
}

// Contains reports whether the product is in the cart
func (c *Cart) Contains(id int) bool {
	return slices.Contains(c.ids, id)
}

// IDs returns the product IDs in insertion order
func (c *Cart) IDs() []int {
	return slices.Clone(c.ids)
}

// Len returns the number of products in the cart
func (c *Cart) Len() int {
	return len(c.ids)
}

// Clear empties the cart
func (c *Cart) Clear() {
	c.ids = nil
}

// Clone returns an independent copy
func (c *Cart) Clone() Cart {
	return Cart{ids: slices.Clone(c.ids)}
}
