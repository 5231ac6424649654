package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/services"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// brokenImage is what problem_user sees for every product
const brokenImage = "/static/img/sl-404.jpg"

// Product is a catalog entry as rendered
type Product struct {
	ID          int
	Name        string
	Description string
	Price       string
	ImageURL    string
	Slug        string
	InCart      bool
}

func productView(p models.Product, user services.User, cart models.Cart) Product {
	img := p.ImageURL
	if user.Persona == services.PersonaProblem {
		img = brokenImage
	}
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       models.FormatPrice(p.Price),
		ImageURL:    img,
		Slug:        strings.ReplaceAll(strings.ToLower(strings.TrimSpace(p.Name)), " ", "-"),
		InCart:      cart.Contains(p.ID),
	}
}

type inventoryData struct {
	pageData
	Products []Product
	Sort     string
	Return   string
}

func (s *Storefront) serveInventory(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	if err := s.throttle(r.Context(), sess.User); err != nil {
		return
	}

	mode := r.URL.Query().Get("sort")
	products, err := s.catalog.Sorted(mode)
	if err != nil {
		s.log.Warn("ignoring sort mode", zap.String("sort", mode), zap.Error(err))
		mode = ""
		products, _ = s.catalog.Sorted("")
	}

	data := inventoryData{
		pageData: s.page(r, sess, "Products"),
		Products: lo.Map(products, func(p models.Product, _ int) Product {
			return productView(p, sess.User, sess.Cart)
		}),
		Sort:   lo.Ternary(mode == "", models.SortNameAsc, mode),
		Return: "/inventory.html",
	}
	if mode != "" {
		data.Return += "?sort=" + mode
	}
	s.render(w, r, "inventory.html", data)
}

// productFromForm resolves the "id" field of a cart form
func (s *Storefront) productFromForm(r *http.Request) (models.Product, int, error) {
	if err := r.ParseForm(); err != nil {
		return models.Product{}, http.StatusBadRequest, err
	}
	id, err := strconv.Atoi(r.PostForm.Get("id"))
	if err != nil {
		return models.Product{}, http.StatusBadRequest, fmt.Errorf("invalid product id %q", r.PostForm.Get("id"))
	}
	p, err := s.catalog.ByID(id)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			return models.Product{}, http.StatusNotFound, err
		}
		return models.Product{}, http.StatusInternalServerError, err
	}
	return p, http.StatusOK, nil
}

func (s *Storefront) handleCartAdd(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	p, status, err := s.productFromForm(r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	s.sessions.Update(sess.ID, func(ss *ShopperSession) {
		if ss.Cart.Add(p.ID) {
			s.log.Debug("cart add", zap.String("username", ss.User.Username), zap.String("product", p.Name))
		}
	})
	redirect(w, r, safeReturn(r.PostForm.Get("return")))
}

func (s *Storefront) handleCartRemove(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	p, status, err := s.productFromForm(r)
	if err != nil {
		s.fail(w, r, status, err)
		return
	}
	s.sessions.Update(sess.ID, func(ss *ShopperSession) {
		if ss.Cart.Remove(p.ID) {
			s.log.Debug("cart remove", zap.String("username", ss.User.Username), zap.String("product", p.Name))
		}
	})
	redirect(w, r, safeReturn(r.PostForm.Get("return")))
}

func (s *Storefront) handleContinueShopping(w http.ResponseWriter, r *http.Request, _ ShopperSession) {
	redirect(w, r, "/inventory.html")
}

// handleReset empties the cart and forgets checkout details
func (s *Storefront) handleReset(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	s.sessions.Update(sess.ID, func(ss *ShopperSession) {
		ss.Cart.Clear()
		ss.Shipping = models.Shipping{}
	})
	redirect(w, r, "/inventory.html")
}

// serveImage answers every product image with a placeholder. The broken
// image of problem_user is a 404.
func (s *Storefront) serveImage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == strings.TrimPrefix(brokenImage, "/static/img/") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "max-age=3600")
	fmt.Fprintf(w, `<svg xmlns="http://www.w3.org/2000/svg" width="160" height="160"><rect width="160" height="160" fill="#e8e8e8"/><text x="80" y="84" font-size="10" text-anchor="middle">%s</text></svg>`,
		strings.NewReplacer("<", "", ">", "", "&", "").Replace(name))
}
