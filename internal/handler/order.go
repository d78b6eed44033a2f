package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/anasalhur/sufra-pos/internal/domain/customer"
	"github.com/anasalhur/sufra-pos/internal/domain/location"
	"github.com/anasalhur/sufra-pos/internal/domain/menu"
	"github.com/anasalhur/sufra-pos/internal/domain/order"
	"github.com/anasalhur/sufra-pos/internal/domain/pricing"
	"github.com/anasalhur/sufra-pos/internal/domain/promo"
)

type orderLineRequest struct {
	ItemID            string           `json:"itemId"`
	Quantity          int              `json:"quantity"`
	Modifiers         []modifierInput  `json:"modifiers,omitempty"`
	PriceOverride     *decimal.Decimal `json:"priceOverride,omitempty"`
	ManualDiscountPct *decimal.Decimal `json:"manualDiscountPct,omitempty"`
}

type modifierInput struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type discountRequest struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type orderRequest struct {
	LocationID   string             `json:"locationId"`
	OrderType    string             `json:"orderType"`
	CustomerID   string             `json:"customerId,omitempty"`
	Lines        []orderLineRequest `json:"lines"`
	Discount     *discountRequest   `json:"discount,omitempty"`
	PromotionID  string             `json:"promotionId,omitempty"`
	RedeemPoints int64              `json:"redeemPoints,omitempty"`
}

type appliedDiscountResponse struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type totalsResponse struct {
	Subtotal        decimal.Decimal            `json:"subtotal"`
	DiscountTotal   decimal.Decimal            `json:"discountTotal"`
	AppliedDiscount *appliedDiscountResponse   `json:"appliedDiscount,omitempty"`
	ManualDiscount  decimal.Decimal            `json:"manualDiscount"`
	LoyaltyDiscount decimal.Decimal            `json:"loyaltyDiscount"`
	TaxTotal        decimal.Decimal            `json:"taxTotal"`
	TaxBreakdown    map[string]decimal.Decimal `json:"taxBreakdown,omitempty"`
	Surcharge       decimal.Decimal            `json:"surcharge"`
	SurchargeName   string                     `json:"surchargeName,omitempty"`
	Total           decimal.Decimal            `json:"total"`
}

type quotedLineResponse struct {
	ItemID     string          `json:"itemId"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	LineTotal  decimal.Decimal `json:"lineTotal"`
	OutOfStock bool            `json:"outOfStock"`
}

type quoteResponse struct {
	Totals totalsResponse       `json:"totals"`
	Lines  []quotedLineResponse `json:"lines"`
}

type invoiceResponse struct {
	ID        string    `json:"id"`
	QRPayload string    `json:"qrPayload"`
	CreatedAt time.Time `json:"createdAt"`
}

type placeOrderResponse struct {
	quoteResponse
	Invoice invoiceResponse `json:"invoice"`
}

// QuoteOrder handles POST /api/orders/quote: it prices the cart without
// persisting anything.
func (h *Handler) QuoteOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOrderRequest(w, r)
	if !ok {
		return
	}

	result, err := h.orderService.Quote(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toQuoteResponse(result))
}

// PlaceOrder handles POST /api/orders: it prices the cart and persists the
// invoice with its compliance QR payload.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeOrderRequest(w, r)
	if !ok {
		return
	}

	result, err := h.orderService.Place(r.Context(), req)
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeOrderResponse{
		quoteResponse: toQuoteResponse(&result.Quote),
		Invoice: invoiceResponse{
			ID:        result.Invoice.ID,
			QRPayload: result.Invoice.QRPayload,
			CreatedAt: result.Invoice.CreatedAt,
		},
	})
}

func decodeOrderRequest(w http.ResponseWriter, r *http.Request) (order.QuoteRequest, bool) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return order.QuoteRequest{}, false
	}

	orderType := pricing.OrderType(req.OrderType)
	switch orderType {
	case pricing.OrderDineIn, pricing.OrderTakeaway, pricing.OrderDelivery:
	default:
		writeError(w, http.StatusBadRequest, "orderType must be dine_in, takeaway or delivery")
		return order.QuoteRequest{}, false
	}

	lines := make([]order.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		modifiers := make([]menu.Modifier, len(l.Modifiers))
		for j, m := range l.Modifiers {
			modifiers[j] = menu.Modifier{Name: m.Name, Price: m.Price}
		}
		lines[i] = order.LineInput{
			ItemID:            l.ItemID,
			Quantity:          l.Quantity,
			Modifiers:         modifiers,
			PriceOverride:     l.PriceOverride,
			ManualDiscountPct: l.ManualDiscountPct,
		}
	}

	out := order.QuoteRequest{
		LocationID:   req.LocationID,
		OrderType:    orderType,
		CustomerID:   req.CustomerID,
		Lines:        lines,
		PromotionID:  req.PromotionID,
		RedeemPoints: req.RedeemPoints,
	}
	if req.Discount != nil {
		out.Discount = &order.DiscountInput{Name: req.Discount.Name, Amount: req.Discount.Amount}
	}
	return out, true
}

func toQuoteResponse(result *order.QuoteResult) quoteResponse {
	t := result.Totals
	totals := totalsResponse{
		Subtotal:        t.Subtotal,
		DiscountTotal:   t.DiscountTotal,
		ManualDiscount:  t.ManualDiscount,
		LoyaltyDiscount: t.LoyaltyDiscount,
		TaxTotal:        t.TaxTotal,
		TaxBreakdown:    t.TaxBreakdown,
		Surcharge:       t.Surcharge,
		SurchargeName:   t.SurchargeName,
		Total:           t.Total,
	}
	if t.AppliedDiscount.Name != "" {
		totals.AppliedDiscount = &appliedDiscountResponse{
			Name:   t.AppliedDiscount.Name,
			Amount: t.AppliedDiscount.Amount,
		}
	}

	lines := make([]quotedLineResponse, len(result.Lines))
	for i, l := range result.Lines {
		lines[i] = quotedLineResponse{
			ItemID:     l.Item.ID,
			Name:       l.Item.Name,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
			LineTotal:  l.LineTotal,
			OutOfStock: l.OutOfStock,
		}
	}
	return quoteResponse{Totals: totals, Lines: lines}
}

// writeOrderError maps domain errors to HTTP error responses.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, order.ErrEmptyLines),
		errors.Is(err, order.ErrConflictingAdjustments):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, location.ErrNotFound):
		writeError(w, http.StatusNotFound, "location not found")
	case errors.Is(err, customer.ErrNotFound):
		writeError(w, http.StatusUnprocessableEntity, "customer not found")
	case errors.Is(err, promo.ErrNotFound), errors.Is(err, promo.ErrInactive):
		writeError(w, http.StatusUnprocessableEntity, "promotion is not available")
	default:
		var qerr *order.InvalidQuantityError
		if errors.As(err, &qerr) {
			writeError(w, http.StatusUnprocessableEntity, qerr.Error())
			return
		}
		var nferr *order.ItemNotFoundError
		if errors.As(err, &nferr) {
			writeError(w, http.StatusUnprocessableEntity, nferr.Error())
			return
		}
		writeInternalError(w, r, err)
	}
}
