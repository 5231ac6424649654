package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

var shippingErrors = []error{
	models.ErrFirstNameRequired,
	models.ErrLastNameRequired,
	models.ErrPostalCodeRequired,
}

type cartData struct {
	pageData
	Items []Product
}

type stepOneData struct {
	pageData
	FirstName  string
	LastName   string
	PostalCode string
}

type stepTwoData struct {
	pageData
	Items    []Product
	Subtotal string
	Tax      string
	Total    string
}

// cartItems renders the cart in the order products were added
func (s *Storefront) cartItems(sess ShopperSession) ([]Product, []models.OrderLine, error) {
	lines, err := s.orders.Quote(&sess.Cart)
	if err != nil {
		return nil, nil, err
	}
	items := make([]Product, 0, len(lines))
	for _, l := range lines {
		p, err := s.catalog.ByID(l.ProductID)
		if err != nil {
			return nil, nil, err
		}
		items = append(items, productView(p, sess.User, sess.Cart))
	}
	return items, lines, nil
}

func (s *Storefront) serveCart(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	items, _, err := s.cartItems(sess)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.render(w, r, "cart.html", cartData{
		pageData: s.page(r, sess, "Your Cart"),
		Items:    items,
	})
}

func (s *Storefront) handleCheckoutStart(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	if sess.Cart.Len() == 0 {
		redirect(w, r, "/cart.html")
		return
	}
	redirect(w, r, "/checkout-step-one.html")
}

func (s *Storefront) serveStepOne(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	s.render(w, r, "checkout-step-one.html", stepOneData{
		pageData: s.page(r, sess, "Checkout: Your Information"),
	})
}

// handleStepOne validates the shipping form. Errors re-render the form with
// the entered values kept.
func (s *Storefront) handleStepOne(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	shipping := models.Shipping{
		FirstName:  strings.TrimSpace(r.PostForm.Get("firstName")),
		LastName:   strings.TrimSpace(r.PostForm.Get("lastName")),
		PostalCode: strings.TrimSpace(r.PostForm.Get("postalCode")),
	}

	if err := shipping.Validate(); err != nil {
		data := stepOneData{
			pageData:   s.page(r, sess, "Checkout: Your Information"),
			FirstName:  shipping.FirstName,
			LastName:   shipping.LastName,
			PostalCode: shipping.PostalCode,
		}
		data.Error = "Error: " + err.Error()
		data.ErrorClose = "/checkout-step-one.html"
		s.render(w, r, "checkout-step-one.html", data)
		return
	}

	s.sessions.Update(sess.ID, func(ss *ShopperSession) {
		ss.Shipping = shipping
	})
	redirect(w, r, "/checkout-step-two.html")
}

func (s *Storefront) serveStepTwo(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	if sess.Shipping.Validate() != nil {
		redirect(w, r, "/checkout-step-one.html")
		return
	}

	items, lines, err := s.cartItems(sess)
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	subtotal, tax, total := models.Summarize(lines)

	s.render(w, r, "checkout-step-two.html", stepTwoData{
		pageData: s.page(r, sess, "Checkout: Overview"),
		Items:    items,
		Subtotal: models.FormatPrice(subtotal),
		Tax:      models.FormatPrice(tax),
		Total:    models.FormatPrice(total),
	})
}

func (s *Storefront) handleFinish(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	order, err := s.orders.PlaceOrder(sess.User.Username, &sess.Cart, sess.Shipping)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrEmptyOrder):
		redirect(w, r, "/cart.html")
		return
	case lo.ContainsBy(shippingErrors, func(target error) bool { return errors.Is(err, target) }):
		redirect(w, r, "/checkout-step-one.html")
		return
	default:
		s.fail(w, r, http.StatusInternalServerError, fmt.Errorf("failed to place order: %w", err))
		return
	}

	s.sessions.Update(sess.ID, func(ss *ShopperSession) {
		ss.Cart.Clear()
		ss.Shipping = models.Shipping{}
		ss.LastOrder = order.Reference
	})
	s.log.Info("order placed",
		zap.String("reference", order.Reference),
		zap.String("username", order.Username),
		zap.Int("items", len(order.Lines)),
		zap.String("total", order.GetFormattedTotal()))
	redirect(w, r, "/checkout-complete.html")
}
