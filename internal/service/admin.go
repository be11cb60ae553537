package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/fulfillment"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/shopify"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// AdminService backs the back-office order endpoints. It runs on the
// elevated write pool and dispatches synchronously so the admin sees the
// real outcome, not a queued promise.
type AdminService struct {
	repos      *repository.Repositories
	dispatcher *fulfillment.Dispatcher
	shopify    *shopify.Client
	mailer     *Mailer
	logger     *zap.Logger
}

// NewAdminService creates the admin order service
func NewAdminService(repos *repository.Repositories, dispatcher *fulfillment.Dispatcher, shopifyClient *shopify.Client, mailer *Mailer, logger *zap.Logger) *AdminService {
	return &AdminService{
		repos:      repos,
		dispatcher: dispatcher,
		shopify:    shopifyClient,
		mailer:     mailer,
		logger:     logger,
	}
}

// GetOrder returns an order with its line items and dispatch history
func (s *AdminService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDetail, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	items, err := s.repos.LineItem.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	attempts, err := s.repos.FulfillmentAttempt.ListByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &OrderDetail{Order: order, Items: items, Attempts: attempts}, nil
}

// ListOrders returns orders filtered by fulfillment status
func (s *AdminService) ListOrders(ctx context.Context, status *domain.FulfillmentStatus, limit, offset int) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.repos.Order.List(ctx, status, limit, offset)
}

// Fulfill dispatches one order now. Works for pending orders and for failed
// orders being retried; tagged orders dispatch too since an explicit admin
// action overrides the parking tags. Missing shipping data is backfilled
// from Shopify first when the order came in by webhook.
func (s *AdminService) Fulfill(ctx context.Context, orderID uuid.UUID, forceProvider string) (*FulfillResult, error) {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentStatusProcessing) {
		return nil, &errors.ErrInvalidStateTransition{
			From: order.FulfillmentStatus,
			To:   domain.FulfillmentStatusProcessing,
		}
	}

	if order.ShippingAddress.IsZero() {
		if err := s.backfillFromShopify(ctx, order); err != nil {
			return nil, err
		}
	}

	if forceProvider != "" {
		items, err := s.repos.LineItem.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if err := s.repos.LineItem.UpdateProvider(ctx, item.ID, forceProvider); err != nil {
				return nil, fmt.Errorf("failed to pin provider on line item: %w", err)
			}
		}
	}

	outcome, err := s.dispatcher.DispatchOrder(ctx, order)
	if err != nil {
		return nil, err
	}

	result := &FulfillResult{
		OrderID:   orderID.String(),
		Success:   outcome.AnySuccess,
		Providers: outcome.Providers,
	}
	if !outcome.AnySuccess {
		result.Error = "no provider accepted the order"
	}

	s.logger.Info("Admin fulfill completed",
		zap.String("order_id", orderID.String()),
		zap.Bool("success", outcome.AnySuccess),
		zap.Strings("providers", outcome.Providers))
	return result, nil
}

// FulfillBulk dispatches a batch strictly sequentially and returns exactly
// one result per requested order, failures included. A bad id or a failed
// dispatch never stops the rest of the batch.
func (s *AdminService) FulfillBulk(ctx context.Context, req *BulkFulfillRequest) []*FulfillResult {
	results := make([]*FulfillResult, 0, len(req.OrderIDs))
	for _, raw := range req.OrderIDs {
		orderID, err := uuid.Parse(raw)
		if err != nil {
			results = append(results, &FulfillResult{OrderID: raw, Error: "invalid order id"})
			continue
		}
		result, err := s.Fulfill(ctx, orderID, req.Provider)
		if err != nil {
			results = append(results, &FulfillResult{OrderID: raw, Error: err.Error()})
			continue
		}
		results = append(results, result)
	}
	return results
}

// UpdateTracking assigns tracking to an order, moves it to shipped, and
// emails the customer best-effort
func (s *AdminService) UpdateTracking(ctx context.Context, orderID uuid.UUID, req *TrackingRequest) error {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentStatusShipped) {
		return &errors.ErrInvalidStateTransition{
			From: order.FulfillmentStatus,
			To:   domain.FulfillmentStatusShipped,
		}
	}

	var carrier *string
	if req.Carrier != "" {
		carrier = &req.Carrier
	}
	if err := s.repos.Order.UpdateTracking(ctx, orderID, req.TrackingNumber, carrier); err != nil {
		return fmt.Errorf("failed to update tracking: %w", err)
	}

	s.mailer.SendTrackingUpdate(order, req.TrackingNumber, req.Carrier)

	s.logger.Info("Tracking assigned",
		zap.String("order_id", orderID.String()),
		zap.String("tracking_number", req.TrackingNumber))
	return nil
}

// UpdateNotes replaces an order's admin notes
func (s *AdminService) UpdateNotes(ctx context.Context, orderID uuid.UUID, notes string) error {
	if _, err := s.repos.Order.GetByID(ctx, orderID); err != nil {
		return err
	}
	return s.repos.Order.UpdateAdminNotes(ctx, orderID, notes)
}

// MarkDelivered moves a shipped order to its terminal state
func (s *AdminService) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.repos.Order.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentStatusDelivered) {
		return &errors.ErrInvalidStateTransition{
			From: order.FulfillmentStatus,
			To:   domain.FulfillmentStatusDelivered,
		}
	}
	return s.repos.Order.UpdateFulfillment(ctx, orderID, order.FulfillmentProvider, domain.FulfillmentStatusDelivered, nil)
}

// backfillFromShopify fills in a missing shipping address before dispatch:
// a recipient recorded in a previous provider response first, then a
// re-fetch from the Shopify Admin API
func (s *AdminService) backfillFromShopify(ctx context.Context, order *domain.Order) error {
	if recipient := addressFromPOD(order.PODResponse); !recipient.IsZero() {
		order.ShippingAddress = recipient
		if err := s.repos.Order.Update(ctx, order); err != nil {
			return fmt.Errorf("failed to persist backfilled address: %w", err)
		}
		return nil
	}

	if order.ExternalOrderID == nil || *order.ExternalOrderID == "" {
		return &errors.ErrValidation{Message: "order has no shipping address and no external order id to backfill from"}
	}
	if s.shopify == nil || !s.shopify.Configured() {
		return &errors.ErrNotConfigured{Feature: "shopify admin api"}
	}

	remote, err := s.shopify.GetOrder(ctx, *order.ExternalOrderID)
	if err != nil {
		return fmt.Errorf("shopify backfill failed: %w", err)
	}

	shipping := remote.ShippingAddress.ToDomain()
	if shipping.IsZero() {
		shipping = remote.BillingAddress.ToDomain()
	}
	if shipping.IsZero() {
		return &errors.ErrValidation{Message: "shopify order has no usable address"}
	}

	order.ShippingAddress = shipping
	if order.Email == "" {
		order.Email = remote.Email
	}
	if err := s.repos.Order.Update(ctx, order); err != nil {
		return fmt.Errorf("failed to persist backfilled address: %w", err)
	}

	s.logger.Info("Order backfilled from Shopify",
		zap.String("order_id", order.ID.String()),
		zap.String("external_order_id", *order.ExternalOrderID))
	return nil
}

// addressFromPOD digs a recipient out of a stored provider response.
// Printful nests it under result.recipient; others put it at the top level.
func addressFromPOD(pod map[string]interface{}) domain.Address {
	if pod == nil {
		return domain.Address{}
	}
	node := pod
	if result, ok := pod["result"].(map[string]interface{}); ok {
		node = result
	}
	recipient, ok := node["recipient"].(map[string]interface{})
	if !ok {
		return domain.Address{}
	}
	str := func(key string) string {
		v, _ := recipient[key].(string)
		return v
	}
	return domain.Address{
		Name:        str("name"),
		Address1:    str("address1"),
		Address2:    str("address2"),
		City:        str("city"),
		Province:    str("state_name"),
		Country:     str("country_name"),
		CountryCode: str("country_code"),
		Zip:         str("zip"),
		Phone:       str("phone"),
	}
}
