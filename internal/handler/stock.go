package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/order"
)

type stockCheckRequest struct {
	ItemID string `json:"itemId"`
	Cart   []struct {
		ItemID   string `json:"itemId"`
		Quantity int    `json:"quantity"`
	} `json:"cart,omitempty"`
}

type stockCheckResponse struct {
	ItemID     string `json:"itemId"`
	OutOfStock bool   `json:"outOfStock"`
}

// CheckStock handles POST /api/stock/check: it reports whether one more unit
// of the item can be sold on top of the submitted cart.
func (h *Handler) CheckStock(w http.ResponseWriter, r *http.Request) {
	var req stockCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId required")
		return
	}

	cart := make([]order.LineInput, len(req.Cart))
	for i, l := range req.Cart {
		cart[i] = order.LineInput{ItemID: l.ItemID, Quantity: l.Quantity}
	}

	out, err := h.orderService.CheckStock(r.Context(), req.ItemID, cart)
	if err != nil {
		if errors.Is(err, menu.ErrNotFound) {
			writeError(w, http.StatusNotFound, "menu item not found")
			return
		}
		var nferr *order.ItemNotFoundError
		if errors.As(err, &nferr) {
			writeError(w, http.StatusUnprocessableEntity, nferr.Error())
			return
		}
		writeInternalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stockCheckResponse{ItemID: req.ItemID, OutOfStock: out})
}
