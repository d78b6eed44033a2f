package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/menu"
)

// menuItemResponse is the wire representation of a menu item. Order-type and
// tier price overrides are included only when set.
type menuItemResponse struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	BasePrice     decimal.Decimal  `json:"basePrice"`
	TakeawayPrice *decimal.Decimal `json:"takeawayPrice,omitempty"`
	DeliveryPrice *decimal.Decimal `json:"deliveryPrice,omitempty"`
	TaxCategory   string           `json:"taxCategory,omitempty"`
	TrackStock    bool             `json:"trackStock"`
}

// ListMenu handles GET /api/menu.
func (h *Handler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.menus.List(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, it := range items {
		resp[i] = toMenuItemResponse(it)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": resp})
}

func toMenuItemResponse(it menu.Item) menuItemResponse {
	return menuItemResponse{
		ID:            it.ID,
		Name:          it.Name,
		Category:      it.Category,
		BasePrice:     it.BasePrice,
		TakeawayPrice: it.TakeawayPrice,
		DeliveryPrice: it.DeliveryPrice,
		TaxCategory:   it.TaxCategory,
		TrackStock:    it.TrackStock,
	}
}
