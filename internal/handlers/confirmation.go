package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

type completeData struct {
	pageData
	Reference string
}

// serveComplete renders the order confirmation. The order number is shown
// when the repository still knows the last placed order.
func (s *Storefront) serveComplete(w http.ResponseWriter, r *http.Request, sess ShopperSession) {
	data := completeData{pageData: s.page(r, sess, "Checkout: Complete!")}

	if sess.LastOrder != "" {
		order, err := s.orders.GetOrderByReference(sess.LastOrder)
		if err != nil {
			s.log.Warn("last order not found", zap.String("reference", sess.LastOrder), zap.Error(err))
		} else if order.IsCompleted() {
			data.Reference = order.Reference
		}
	}

	s.render(w, r, "checkout-complete.html", data)
}
