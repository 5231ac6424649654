package handlers

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorefront_InventorySorting(t *testing.T) {
	tests := []struct {
		sort      string
		wantFirst string
		wantLast  string
		wantSort  string
	}{
		{sort: "", wantFirst: "Sauce Labs Backpack", wantLast: "Test.allTheThings() T-Shirt (Red)", wantSort: "az"},
		{sort: "az", wantFirst: "Sauce Labs Backpack", wantLast: "Test.allTheThings() T-Shirt (Red)", wantSort: "az"},
		{sort: "za", wantFirst: "Test.allTheThings() T-Shirt (Red)", wantLast: "Sauce Labs Backpack", wantSort: "za"},
		{sort: "lohi", wantFirst: "Sauce Labs Onesie", wantLast: "Sauce Labs Fleece Jacket", wantSort: "lohi"},
		{sort: "hilo", wantFirst: "Sauce Labs Fleece Jacket", wantLast: "Sauce Labs Onesie", wantSort: "hilo"},
		{sort: "bogus", wantFirst: "Sauce Labs Backpack", wantLast: "Test.allTheThings() T-Shirt (Red)", wantSort: "az"},
	}

	for _, tt := range tests {
		t.Run("sort="+tt.sort, func(t *testing.T) {
			shop := newTestShop(t)
			shop.login("standard_user")

			page := shop.get("/inventory.html?sort=" + tt.sort)

			require.Equal(t, http.StatusOK, page.status)
			names := texts(dataTest(page.doc, "inventory-item-name"))
			require.Len(t, names, 6)
			assert.Equal(t, tt.wantFirst, names[0])
			assert.Equal(t, tt.wantLast, names[5])
			selected, _ := dataTest(page.doc, "product-sort-container").Find("option[selected]").Attr("value")
			assert.Equal(t, tt.wantSort, selected)
		})
	}
}

func TestStorefront_InventoryPrices(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	page := shop.get("/inventory.html?sort=lohi")

	assert.Equal(t, []string{"$7.99", "$9.99", "$15.99", "$15.99", "$29.99", "$49.99"},
		texts(dataTest(page.doc, "inventory-item-price")))
	assert.Equal(t, "Products", texts(dataTest(page.doc, "title"))[0])
}

func TestStorefront_AddAndRemove(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	// GIVEN the first product was added
	page := shop.addToCart(4)

	// THEN its button turns into remove and the badge counts it
	assert.Equal(t, "/inventory.html", page.path)
	assert.Equal(t, []string{"1"}, texts(dataTest(page.doc, "shopping-cart-badge")))
	assert.Equal(t, 1, dataTest(page.doc, "remove-sauce-labs-backpack").Length())
	assert.Equal(t, 5, page.doc.Find(`button[data-test^="add-to-cart"]`).Length())

	// WHEN the next add button in the list is used
	first, _ := page.doc.Find(`button[data-test^="add-to-cart"]`).First().Attr("data-test")
	assert.Equal(t, "add-to-cart-sauce-labs-bike-light", first)
	page = shop.addToCart(0)
	assert.Equal(t, []string{"2"}, texts(dataTest(page.doc, "shopping-cart-badge")))

	// WHEN both are removed
	shop.post("/cart/remove", url.Values{"id": {"4"}, "return": {"/inventory.html"}})
	page = shop.post("/cart/remove", url.Values{"id": {"0"}, "return": {"/inventory.html"}})

	// THEN the badge is gone
	assert.Equal(t, 0, dataTest(page.doc, "shopping-cart-badge").Length())
	assert.Equal(t, 6, page.doc.Find(`button[data-test^="add-to-cart"]`).Length())
}

func TestStorefront_AddTwiceKeepsOneEntry(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	shop.addToCart(4)
	page := shop.addToCart(4)

	assert.Equal(t, []string{"1"}, texts(dataTest(page.doc, "shopping-cart-badge")))
}

func TestStorefront_CartMutationReturnsToSortedCatalog(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	page := shop.get("/inventory.html?sort=hilo")
	ret, _ := page.doc.Find(`input[name="return"]`).First().Attr("value")
	assert.Equal(t, "/inventory.html?sort=hilo", ret)

	page = shop.post("/cart/add", url.Values{"id": {"5"}, "return": {ret}})

	assert.Equal(t, "hilo", page.query.Get("sort"))
	assert.Equal(t, "Sauce Labs Fleece Jacket", texts(dataTest(page.doc, "inventory-item-name"))[0])
}

func TestStorefront_CartMutationErrors(t *testing.T) {
	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{name: "not a number", id: "abc", wantStatus: http.StatusBadRequest},
		{name: "missing", id: "", wantStatus: http.StatusBadRequest},
		{name: "unknown product", id: "42", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shop := newTestShop(t)
			shop.login("standard_user")

			page := shop.post("/cart/add", url.Values{"id": {tt.id}})

			assert.Equal(t, tt.wantStatus, page.status)
			assert.Contains(t, page.body, `"error":"`+http.StatusText(tt.wantStatus)+`"`)
		})
	}
}

func TestStorefront_ProblemUserImages(t *testing.T) {
	tests := []struct {
		username string
		broken   bool
	}{
		{username: "standard_user"},
		{username: "problem_user", broken: true},
	}

	for _, tt := range tests {
		t.Run(tt.username, func(t *testing.T) {
			shop := newTestShop(t)
			page := shop.login(tt.username)

			srcs := dataTest(page.doc, "inventory-item-img").Map(func(_ int, s *goquery.Selection) string {
				src, _ := s.Attr("src")
				return src
			})
			require.Len(t, srcs, 6)
			for _, src := range srcs {
				assert.Equal(t, tt.broken, src == brokenImage, src)
			}

			img := shop.get(srcs[0])
			if tt.broken {
				assert.Equal(t, http.StatusNotFound, img.status)
			} else {
				assert.Equal(t, http.StatusOK, img.status)
			}
		})
	}
}

func TestStorefront_ResetAppState(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")
	shop.addToCart(4)
	shop.addToCart(1)

	page := shop.get("/reset-app-state")

	assert.Equal(t, "/inventory.html", page.path)
	assert.Equal(t, 0, dataTest(page.doc, "shopping-cart-badge").Length())
}

func TestStorefront_ContinueShopping(t *testing.T) {
	shop := newTestShop(t)
	shop.login("standard_user")

	page := shop.post("/cart/continue", nil)

	assert.Equal(t, "/inventory.html", page.path)
}
