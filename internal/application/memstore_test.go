package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oroshop/fulfillment-service/internal/apperr"
	"github.com/oroshop/fulfillment-service/internal/domain"
	"github.com/oroshop/fulfillment-service/internal/repository"
)

// memStore is an in-memory Store with the same contract the engine expects
// from Postgres: WithinTx runs serialized, mutations apply to a snapshot, and
// the snapshot replaces the live state only when fn succeeds.
type memStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	orders         map[uuid.UUID]*domain.Order
	shops          map[uuid.UUID]*domain.Shop
	cancellations  map[uuid.UUID]*domain.Cancellation
	shipments      map[uuid.UUID]*domain.Shipment
	refundRequests map[uuid.UUID]*domain.RefundRequest
	returnedItems  map[uuid.UUID]*domain.ReturnedItem
	transactions   map[uuid.UUID]*domain.Transaction
	withdrawals    map[uuid.UUID]*domain.Withdrawal
	fingerprints   map[string]bool
	variants       map[string]*domain.ProductVariant
}

func newMemStore() *memStore {
	return &memStore{state: &memState{
		orders:         map[uuid.UUID]*domain.Order{},
		shops:          map[uuid.UUID]*domain.Shop{},
		cancellations:  map[uuid.UUID]*domain.Cancellation{},
		shipments:      map[uuid.UUID]*domain.Shipment{},
		refundRequests: map[uuid.UUID]*domain.RefundRequest{},
		returnedItems:  map[uuid.UUID]*domain.ReturnedItem{},
		transactions:   map[uuid.UUID]*domain.Transaction{},
		withdrawals:    map[uuid.UUID]*domain.Withdrawal{},
		fingerprints:   map[string]bool{},
		variants:       map[string]*domain.ProductVariant{},
	}}
}

func (s *memStore) WithinTx(_ context.Context, fn func(repository.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.state.clone()
	if err := fn(&memRepos{st: snap}); err != nil {
		return err
	}
	s.state = snap
	return nil
}

func cloneMap[K comparable, V any](src map[K]*V, copyFn func(*V) *V) map[K]*V {
	dst := make(map[K]*V, len(src))
	for k, v := range src {
		dst[k] = copyFn(v)
	}
	return dst
}

func copyOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	c.StatusHistory = append([]domain.StatusEntry(nil), o.StatusHistory...)
	c.Payment.Refunds = append([]domain.RefundReceipt(nil), o.Payment.Refunds...)
	return &c
}

func copyShop(sh *domain.Shop) *domain.Shop {
	c := *sh
	c.CancellationIDs = append([]uuid.UUID(nil), sh.CancellationIDs...)
	c.ShipmentIDs = append([]uuid.UUID(nil), sh.ShipmentIDs...)
	c.ReturnedItemIDs = append([]uuid.UUID(nil), sh.ReturnedItemIDs...)
	c.TransactionIDs = append([]uuid.UUID(nil), sh.TransactionIDs...)
	return &c
}

func copyVal[V any](v *V) *V {
	c := *v
	return &c
}

func (st *memState) clone() *memState {
	next := &memState{
		orders:         cloneMap(st.orders, copyOrder),
		shops:          cloneMap(st.shops, copyShop),
		cancellations:  cloneMap(st.cancellations, copyVal[domain.Cancellation]),
		shipments:      cloneMap(st.shipments, copyVal[domain.Shipment]),
		refundRequests: cloneMap(st.refundRequests, copyVal[domain.RefundRequest]),
		returnedItems:  cloneMap(st.returnedItems, copyVal[domain.ReturnedItem]),
		transactions:   cloneMap(st.transactions, copyVal[domain.Transaction]),
		withdrawals:    cloneMap(st.withdrawals, copyVal[domain.Withdrawal]),
		fingerprints:   make(map[string]bool, len(st.fingerprints)),
		variants:       cloneMap(st.variants, copyVal[domain.ProductVariant]),
	}
	for k := range st.fingerprints {
		next.fingerprints[k] = true
	}
	return next
}

type memRepos struct{ st *memState }

func (r *memRepos) Orders() repository.OrderRepo               { return &memOrders{st: r.st} }
func (r *memRepos) Shops() repository.ShopRepo                 { return &memShops{st: r.st} }
func (r *memRepos) Cancellations() repository.CancellationRepo { return &memCancellations{st: r.st} }
func (r *memRepos) Shipments() repository.ShipmentRepo         { return &memShipments{st: r.st} }
func (r *memRepos) Refunds() repository.RefundRepo             { return &memRefunds{st: r.st} }
func (r *memRepos) Transactions() repository.TransactionRepo   { return &memTransactions{st: r.st} }

type memOrders struct{ st *memState }

func (m *memOrders) Get(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := m.st.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, apperr.ErrNotFound)
	}
	return copyOrder(o), nil
}

func (m *memOrders) SetStatus(_ context.Context, orderID uuid.UUID, status domain.OrderStatus, entry domain.StatusEntry) error {
	o, ok := m.st.orders[orderID]
	if !ok {
		return fmt.Errorf("order %s: %w", orderID, apperr.ErrNotFound)
	}
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, entry)
	return nil
}

func (m *memOrders) LinkCancellation(_ context.Context, orderID, id uuid.UUID) error {
	m.st.orders[orderID].CancellationID = &id
	return nil
}

func (m *memOrders) LinkShipment(_ context.Context, orderID, id uuid.UUID) error {
	m.st.orders[orderID].ShipmentID = &id
	return nil
}

func (m *memOrders) LinkTransaction(_ context.Context, orderID, id uuid.UUID) error {
	m.st.orders[orderID].TransactionID = &id
	return nil
}

func (m *memOrders) SetPaymentStatus(_ context.Context, orderID uuid.UUID, status domain.PaymentStatus) error {
	m.st.orders[orderID].Payment.Status = status
	return nil
}

func (m *memOrders) AppendRefundReceipt(_ context.Context, orderID uuid.UUID, receipt domain.RefundReceipt) error {
	o := m.st.orders[orderID]
	o.Payment.Refunds = append(o.Payment.Refunds, receipt)
	return nil
}

func variantKey(productID uuid.UUID, color, size string) string {
	return productID.String() + "|" + color + "|" + size
}

func (m *memOrders) RestoreStock(_ context.Context, items []domain.OrderItem) error {
	for _, it := range items {
		v, ok := m.st.variants[variantKey(it.ProductID, it.Color, it.Size)]
		if !ok {
			continue
		}
		v.Stock += it.Quantity
		v.SoldOut -= it.Quantity
		if v.SoldOut < 0 {
			v.SoldOut = 0
		}
	}
	return nil
}

type memShops struct{ st *memState }

func (m *memShops) Get(_ context.Context, id uuid.UUID) (*domain.Shop, error) {
	sh, ok := m.st.shops[id]
	if !ok {
		return nil, fmt.Errorf("shop %s: %w", id, apperr.ErrNotFound)
	}
	return copyShop(sh), nil
}

func (m *memShops) SetNetIncome(_ context.Context, shopID uuid.UUID, balance float64) error {
	sh, ok := m.st.shops[shopID]
	if !ok {
		return fmt.Errorf("shop %s: %w", shopID, apperr.ErrNotFound)
	}
	sh.NetShopIncome = balance
	return nil
}

func (m *memShops) AppendRef(_ context.Context, shopID uuid.UUID, kind domain.ShopRefKind, refID uuid.UUID) error {
	sh, ok := m.st.shops[shopID]
	if !ok {
		return fmt.Errorf("shop %s: %w", shopID, apperr.ErrNotFound)
	}
	switch kind {
	case domain.RefCancellation:
		sh.CancellationIDs = append(sh.CancellationIDs, refID)
	case domain.RefShipment:
		sh.ShipmentIDs = append(sh.ShipmentIDs, refID)
	case domain.RefReturnedItem:
		sh.ReturnedItemIDs = append(sh.ReturnedItemIDs, refID)
	case domain.RefTransaction:
		sh.TransactionIDs = append(sh.TransactionIDs, refID)
	}
	return nil
}

type memCancellations struct{ st *memState }

func (m *memCancellations) GetByOrder(_ context.Context, orderID uuid.UUID) (*domain.Cancellation, error) {
	for _, c := range m.st.cancellations {
		if c.OrderID == orderID {
			return copyVal(c), nil
		}
	}
	return nil, nil
}

func (m *memCancellations) Create(_ context.Context, c *domain.Cancellation) error {
	m.st.cancellations[c.ID] = copyVal(c)
	return nil
}

func (m *memCancellations) UpdateReview(_ context.Context, id uuid.UUID, review domain.CancellationReview) error {
	c, ok := m.st.cancellations[id]
	if !ok {
		return fmt.Errorf("cancellation %s: %w", id, apperr.ErrNotFound)
	}
	c.Review = review
	return nil
}

type memShipments struct{ st *memState }

func (m *memShipments) GetByOrder(_ context.Context, orderID uuid.UUID) (*domain.Shipment, error) {
	for _, sh := range m.st.shipments {
		if sh.OrderID == orderID {
			return copyVal(sh), nil
		}
	}
	return nil, nil
}

func (m *memShipments) Create(_ context.Context, sh *domain.Shipment) error {
	m.st.shipments[sh.ID] = copyVal(sh)
	return nil
}

type memRefunds struct{ st *memState }

func (m *memRefunds) GetRequest(_ context.Context, id uuid.UUID) (*domain.RefundRequest, error) {
	rr, ok := m.st.refundRequests[id]
	if !ok {
		return nil, fmt.Errorf("refund request %s: %w", id, apperr.ErrNotFound)
	}
	return copyVal(rr), nil
}

func (m *memRefunds) CreateRequest(_ context.Context, rr *domain.RefundRequest) error {
	m.st.refundRequests[rr.ID] = copyVal(rr)
	return nil
}

func (m *memRefunds) GetReturn(_ context.Context, id uuid.UUID) (*domain.ReturnedItem, error) {
	ri, ok := m.st.returnedItems[id]
	if !ok {
		return nil, fmt.Errorf("returned item %s: %w", id, apperr.ErrNotFound)
	}
	return copyVal(ri), nil
}

func (m *memRefunds) GetReturnByRequest(_ context.Context, refundRequestID uuid.UUID) (*domain.ReturnedItem, error) {
	for _, ri := range m.st.returnedItems {
		if ri.RefundRequestID == refundRequestID {
			return copyVal(ri), nil
		}
	}
	return nil, nil
}

func (m *memRefunds) CreateReturn(_ context.Context, ri *domain.ReturnedItem) error {
	m.st.returnedItems[ri.ID] = copyVal(ri)
	return nil
}

type memTransactions struct{ st *memState }

func (m *memTransactions) ExistsFingerprint(_ context.Context, fp string) (bool, error) {
	return m.st.fingerprints[fp], nil
}

func (m *memTransactions) Create(_ context.Context, t *domain.Transaction) error {
	m.st.transactions[t.ID] = copyVal(t)
	m.st.fingerprints[t.Fingerprint()] = true
	return nil
}

func (m *memTransactions) GetWithdrawal(_ context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	w, ok := m.st.withdrawals[id]
	if !ok {
		return nil, fmt.Errorf("withdrawal %s: %w", id, apperr.ErrNotFound)
	}
	return copyVal(w), nil
}

func (m *memTransactions) CreateWithdrawal(_ context.Context, w *domain.Withdrawal) error {
	m.st.withdrawals[w.ID] = copyVal(w)
	return nil
}

func (m *memTransactions) SetWithdrawalStatus(_ context.Context, id uuid.UUID, status domain.WithdrawalStatus) error {
	w, ok := m.st.withdrawals[id]
	if !ok {
		return fmt.Errorf("withdrawal %s: %w", id, apperr.ErrNotFound)
	}
	w.Status = status
	return nil
}

// test fixtures

type fixture struct {
	store *memStore
	svc   *FulfillmentService

	shopID     uuid.UUID
	ownerID    uuid.UUID
	customerID uuid.UUID
	orderID    uuid.UUID
	productID  uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		store:      newMemStore(),
		shopID:     uuid.New(),
		ownerID:    uuid.New(),
		customerID: uuid.New(),
		orderID:    uuid.New(),
		productID:  uuid.New(),
	}
	f.svc = NewFulfillmentService(f.store, nil, 3, time.Millisecond)

	f.store.state.shops[f.shopID] = &domain.Shop{
		ID:            f.shopID,
		OwnerID:       f.ownerID,
		Name:          "Atlas Goods",
		NetShopIncome: 500.00,
		CreatedAt:     time.Now().UTC(),
	}
	f.store.state.orders[f.orderID] = &domain.Order{
		ID:         f.orderID,
		CustomerID: f.customerID,
		ShopID:     f.shopID,
		Items: []domain.OrderItem{{
			ProductID: f.productID,
			ShopID:    f.shopID,
			Color:     "black",
			Size:      "M",
			Quantity:  3,
			UnitPrice: 40,
			LineTotal: 120,
		}},
		Payment: domain.PaymentData{
			Method:     "Card",
			Provider:   "Stripe",
			Status:     domain.PaymentPaid,
			AmountPaid: 150,
			Currency:   "USD",
		},
		Subtotal:    120,
		ShippingFee: 20,
		Tax:         5,
		ServiceFee:  5,
		GrandTotal:  150,
		Status:      domain.StatusPending,
		StatusHistory: []domain.StatusEntry{{
			Status: domain.StatusPending,
			At:     time.Now().UTC(),
		}},
		CreatedAt: time.Now().UTC(),
	}
	f.store.state.variants[variantKey(f.productID, "black", "M")] = &domain.ProductVariant{
		ProductID: f.productID,
		Color:     "black",
		Size:      "M",
		Stock:     7,
		SoldOut:   5,
	}
	return f
}

func (f *fixture) setOrderStatus(s domain.OrderStatus) {
	o := f.store.state.orders[f.orderID]
	o.Status = s
	o.StatusHistory = append(o.StatusHistory, domain.StatusEntry{Status: s, At: time.Now().UTC()})
}

func (f *fixture) order() *domain.Order {
	return copyOrder(f.store.state.orders[f.orderID])
}

func (f *fixture) shop() *domain.Shop {
	return copyShop(f.store.state.shops[f.shopID])
}

func (f *fixture) seedRefundRequest(amount float64) *domain.RefundRequest {
	rr := &domain.RefundRequest{
		ID:         uuid.New(),
		Code:       newCode("REF"),
		OrderID:    f.orderID,
		CustomerID: f.customerID,
		ProductID:  f.productID,
		Color:      "black",
		Size:       "M",
		Quantity:   3,
		Amount:     amount,
		Method:     "Card",
		PayoutDetails: domain.PayoutDetails{
			Kind:        domain.PayoutPayPal,
			PayPalEmail: "buyer@example.com",
		},
		CreatedAt: time.Now().UTC(),
	}
	f.store.state.refundRequests[rr.ID] = rr
	return rr
}

func (f *fixture) seedWithdrawal(amount float64) *domain.Withdrawal {
	w := &domain.Withdrawal{
		ID:          uuid.New(),
		Code:        newCode("WDR"),
		ShopID:      f.shopID,
		Amount:      amount,
		Currency:    "USD",
		Method:      "Bank",
		Status:      domain.WithdrawalPending,
		RequestedBy: f.ownerID,
		CreatedAt:   time.Now().UTC(),
	}
	f.store.state.withdrawals[w.ID] = w
	return w
}
