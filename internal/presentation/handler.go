package presentation

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/oroshop/fulfillment-service/internal/application"
	"github.com/oroshop/fulfillment-service/internal/domain"
	"github.com/oroshop/fulfillment-service/internal/presentation/helpers"
	"github.com/oroshop/fulfillment-service/internal/pricing"
)

// actorHeader carries the authenticated user id set by the gateway.
const actorHeader = "X-Actor-ID"

type FulfillmentHandler struct {
	svc *application.FulfillmentService
}

func NewFulfillmentHandler(svc *application.FulfillmentService) *FulfillmentHandler {
	return &FulfillmentHandler{svc: svc}
}

func (h *FulfillmentHandler) Register(r chi.Router) {
	r.Get("/healthz", h.Health)

	r.Get("/orders/{id}", h.GetOrder)
	r.Post("/orders/{id}/cancellations", h.CreateCancellation)
	r.Post("/orders/{id}/cancellations/review", h.ReviewCancellation)
	r.Post("/orders/{id}/shipments", h.CreateShipment)
	r.Post("/orders/{id}/refund-requests", h.CreateRefundRequest)
	r.Post("/orders/{id}/returns", h.CreateReturnedItem)

	r.Post("/shops/{id}/withdrawals", h.RequestWithdrawal)
	r.Post("/shops/{id}/transactions", h.PostTransaction)

	r.Get("/pricing/shipping", h.QuoteShipping)
	r.Get("/pricing/insurance", h.QuoteInsurance)
}

func (h *FulfillmentHandler) Health(w http.ResponseWriter, _ *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	return id, err == nil
}

func actorID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.Header.Get(actorHeader))
	return id, err == nil
}

// ids pulls the {id} path param and the actor header; on failure it writes
// the 4xx itself and reports false.
func ids(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	id, ok := pathUUID(r, "id")
	if !ok {
		helpers.HttpError(w, http.StatusBadRequest, "invalid id in path")
		return uuid.Nil, uuid.Nil, false
	}
	actor, ok := actorID(r)
	if !ok {
		helpers.HttpError(w, http.StatusUnauthorized, "missing or invalid "+actorHeader+" header")
		return uuid.Nil, uuid.Nil, false
	}
	return id, actor, true
}

func (h *FulfillmentHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(r, "id")
	if !ok {
		helpers.HttpError(w, http.StatusBadRequest, "invalid id in path")
		return
	}

	order, err := h.svc.GetOrder(r.Context(), id)
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, order)
}

type createCancellationRequest struct {
	Reason      domain.CancellationReason `json:"reason"`
	OtherReason string                    `json:"other_reason,omitempty"`
}

func (h *FulfillmentHandler) CreateCancellation(w http.ResponseWriter, r *http.Request) {
	orderID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req createCancellationRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.CreateCancellation(r.Context(), application.CreateCancellationInput{
		OrderID:     orderID,
		RequestedBy: actor,
		Reason:      req.Reason,
		OtherReason: req.OtherReason,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, c)
}

type reviewCancellationRequest struct {
	Status domain.ReviewStatus `json:"status"`
	Notes  string              `json:"notes,omitempty"`
}

func (h *FulfillmentHandler) ReviewCancellation(w http.ResponseWriter, r *http.Request) {
	orderID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req reviewCancellationRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	c, err := h.svc.ReviewCancellation(r.Context(), application.ReviewCancellationInput{
		OrderID:    orderID,
		ReviewerID: actor,
		Status:     req.Status,
		Notes:      req.Notes,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, c)
}

type createShipmentRequest struct {
	Provider           string              `json:"provider"`
	ServiceType        pricing.ServiceType `json:"service_type"`
	WeightKg           float64             `json:"weight_kg"`
	InsuranceSupported bool                `json:"insurance_supported"`
	TrackingNumber     string              `json:"tracking_number,omitempty"`
	ContactName        string              `json:"contact_name"`
	ContactPhone       string              `json:"contact_phone"`
	DeliveryAddress    domain.Address      `json:"delivery_address"`
}

func (h *FulfillmentHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	orderID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req createShipmentRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	sh, err := h.svc.CreateShipment(r.Context(), application.CreateShipmentInput{
		OrderID:            orderID,
		ActorID:            actor,
		Provider:           req.Provider,
		ServiceType:        req.ServiceType,
		WeightKg:           req.WeightKg,
		InsuranceSupported: req.InsuranceSupported,
		TrackingNumber:     req.TrackingNumber,
		ContactName:        req.ContactName,
		ContactPhone:       req.ContactPhone,
		DeliveryAddress:    req.DeliveryAddress,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, sh)
}

type createRefundRequestRequest struct {
	ProductID     uuid.UUID            `json:"product_id"`
	Color         string               `json:"color"`
	Size          string               `json:"size"`
	Quantity      int                  `json:"quantity"`
	Amount        float64              `json:"amount"`
	Method        string               `json:"method"`
	PayoutDetails domain.PayoutDetails `json:"payout_details"`
}

func (h *FulfillmentHandler) CreateRefundRequest(w http.ResponseWriter, r *http.Request) {
	orderID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req createRefundRequestRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	rr, err := h.svc.CreateRefundRequest(r.Context(), application.CreateRefundRequestInput{
		OrderID:       orderID,
		CustomerID:    actor,
		ProductID:     req.ProductID,
		Color:         req.Color,
		Size:          req.Size,
		Quantity:      req.Quantity,
		Amount:        req.Amount,
		Method:        req.Method,
		PayoutDetails: req.PayoutDetails,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, rr)
}

type createReturnedItemRequest struct {
	RefundRequestID   uuid.UUID             `json:"refund_request_id"`
	IsProductReturned bool                  `json:"is_product_returned"`
	Condition         domain.ItemCondition  `json:"condition"`
	RefundStatus      domain.RefundDecision `json:"refund_status"`
	RefundAmount      float64               `json:"refund_amount"`
	Comments          string                `json:"comments,omitempty"`
}

func (h *FulfillmentHandler) CreateReturnedItem(w http.ResponseWriter, r *http.Request) {
	orderID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req createReturnedItemRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	ri, err := h.svc.CreateReturnedItem(r.Context(), application.CreateReturnedItemInput{
		OrderID:           orderID,
		RefundRequestID:   req.RefundRequestID,
		ActorID:           actor,
		IsProductReturned: req.IsProductReturned,
		Condition:         req.Condition,
		RefundStatus:      req.RefundStatus,
		RefundAmount:      req.RefundAmount,
		Comments:          req.Comments,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, ri)
}

type requestWithdrawalRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Method   string  `json:"method"`
}

func (h *FulfillmentHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	shopID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req requestWithdrawalRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	wd, err := h.svc.RequestWithdrawal(r.Context(), application.RequestWithdrawalInput{
		ShopID:   shopID,
		ActorID:  actor,
		Amount:   req.Amount,
		Currency: req.Currency,
		Method:   req.Method,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, wd)
}

type postTransactionRequest struct {
	Type     domain.TransactionType   `json:"type"`
	Status   domain.TransactionStatus `json:"status"`
	Amount   float64                  `json:"amount"`
	Currency string                   `json:"currency"`
	Method   string                   `json:"method"`
	Provider string                   `json:"provider"`

	OrderID         *uuid.UUID `json:"order_id,omitempty"`
	PlatformFees    float64    `json:"platform_fees,omitempty"`
	RefundRequestID *uuid.UUID `json:"refund_request_id,omitempty"`
	ReturnedItemID  *uuid.UUID `json:"returned_item_id,omitempty"`
	WithdrawalID    *uuid.UUID `json:"withdrawal_id,omitempty"`
}

func (h *FulfillmentHandler) PostTransaction(w http.ResponseWriter, r *http.Request) {
	shopID, actor, ok := ids(w, r)
	if !ok {
		return
	}
	var req postTransactionRequest
	if err := helpers.DecodeJSON(r.Body, &req); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	tx, err := h.svc.PostTransaction(r.Context(), application.PostTransactionInput{
		ShopID:          shopID,
		ActorID:         actor,
		Type:            req.Type,
		Status:          req.Status,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Method:          req.Method,
		Provider:        req.Provider,
		OrderID:         req.OrderID,
		PlatformFees:    req.PlatformFees,
		RefundRequestID: req.RefundRequestID,
		ReturnedItemID:  req.ReturnedItemID,
		WithdrawalID:    req.WithdrawalID,
	})
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, tx)
}

// QuoteShipping answers GET /pricing/shipping?weight_kg=10&service_type=Standard&subtotal=600.
// subtotal is optional; without it only the base price is quoted.
func (h *FulfillmentHandler) QuoteShipping(w http.ResponseWriter, r *http.Request) {
	weight, err := strconv.ParseFloat(r.URL.Query().Get("weight_kg"), 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "weight_kg must be a number")
		return
	}
	serviceType := pricing.ServiceType(r.URL.Query().Get("service_type"))

	base, err := pricing.CalculateBaseShippingPrice(weight, serviceType)
	if err != nil {
		helpers.WriteAppError(w, err)
		return
	}

	resp := map[string]any{
		"service_type": serviceType,
		"weight_kg":    weight,
		"base_price":   base,
	}
	if raw := r.URL.Query().Get("subtotal"); raw != "" {
		subtotal, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			helpers.HttpError(w, http.StatusBadRequest, "subtotal must be a number")
			return
		}
		price, err := pricing.CalculateShippingPrice(subtotal, weight, serviceType)
		if err != nil {
			helpers.WriteAppError(w, err)
			return
		}
		resp["subtotal"] = subtotal
		resp["price"] = price
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// QuoteInsurance answers GET /pricing/insurance?declared_value=120. Invalid
// values quote zero rather than failing, matching the calculator.
func (h *FulfillmentHandler) QuoteInsurance(w http.ResponseWriter, r *http.Request) {
	value, err := strconv.ParseFloat(r.URL.Query().Get("declared_value"), 64)
	if err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "declared_value must be a number")
		return
	}
	fee := pricing.CalculateInsuranceFee(value)
	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"declared_value": value,
		"fee":            fee,
	})
}
