package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
	"github.com/ikonicity-airban/geek-creations-sub000/pkg/errors"
)

// WebhookService ingests order webhooks: dedupe, persist, enqueue dispatch.
// It never calls POD providers itself; the dispatcher owns that, so webhook
// acknowledgment stays fast regardless of provider latency.
type WebhookService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewWebhookService creates the webhook ingestion service
func NewWebhookService(repos *repository.Repositories, logger *zap.Logger) *WebhookService {
	return &WebhookService{repos: repos, logger: logger}
}

// IngestResult reports what ingestion did with a delivery
type IngestResult struct {
	OrderID   uuid.UUID
	Duplicate bool
	Parked    bool
}

// IngestOrder processes one verified orders/create delivery. Redeliveries of
// an external order id already seen are acknowledged without side effects —
// but only when the first delivery's order actually exists. A dedupe row
// with no order means a previous attempt died between Record and Create, so
// the redelivery is ingested as if it were the first.
func (s *WebhookService) IngestOrder(ctx context.Context, payload *WebhookOrderPayload) (*IngestResult, error) {
	externalID := strconv.FormatInt(payload.ID, 10)

	fresh, err := s.repos.WebhookDelivery.Record(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook delivery: %w", err)
	}
	if !fresh {
		existing, err := s.repos.Order.GetByExternalOrderID(ctx, externalID)
		if err == nil {
			metrics.WebhooksReceived.WithLabelValues("duplicate").Inc()
			s.logger.Info("Duplicate webhook delivery ignored",
				zap.String("external_order_id", externalID))
			return &IngestResult{OrderID: existing.ID, Duplicate: true}, nil
		}
		if !errors.IsNotFound(err) {
			return nil, fmt.Errorf("failed to look up order for redelivery: %w", err)
		}
		s.logger.Warn("Recorded delivery has no order, ingesting redelivery",
			zap.String("external_order_id", externalID))
	}

	order := s.buildOrder(payload, externalID)
	if err := s.repos.Order.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	items := s.buildLineItems(order.ID, payload.LineItems)
	if len(items) > 0 {
		if err := s.repos.LineItem.CreateBatch(ctx, items); err != nil {
			return nil, fmt.Errorf("failed to create line items: %w", err)
		}
	}

	// Tagged orders are enqueued too: the dispatcher records the skip so the
	// dispatch log explains why nothing went out.
	job := &domain.DispatchJob{OrderID: order.ID, Status: domain.JobStatusQueued}
	if err := s.repos.DispatchJob.Enqueue(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue dispatch: %w", err)
	}

	parked := order.HasTag(domain.TagManualReview) || order.HasTag(domain.TagPendingAdmin)
	if parked {
		metrics.WebhooksReceived.WithLabelValues("skipped_tagged").Inc()
	} else {
		metrics.WebhooksReceived.WithLabelValues("accepted").Inc()
	}

	s.logger.Info("Order webhook ingested",
		zap.String("order_id", order.ID.String()),
		zap.String("external_order_id", externalID),
		zap.String("order_number", order.OrderNumber),
		zap.Int("line_items", len(items)),
		zap.Bool("parked", parked))

	return &IngestResult{OrderID: order.ID, Parked: parked}, nil
}

// buildOrder maps a webhook payload to a domain order. The shipping address
// falls back deterministically: order shipping address, then billing address,
// then the customer's default address.
func (s *WebhookService) buildOrder(payload *WebhookOrderPayload, externalID string) *domain.Order {
	shipping := payload.ShippingAddress.ToDomain()
	if shipping.IsZero() {
		shipping = payload.BillingAddress.ToDomain()
	}
	if shipping.IsZero() && payload.Customer != nil {
		shipping = payload.Customer.DefaultAddress.ToDomain()
	}

	var billing *domain.Address
	if payload.BillingAddress != nil {
		b := payload.BillingAddress.ToDomain()
		if !b.IsZero() {
			billing = &b
		}
	}

	email := payload.Email
	if email == "" && payload.Customer != nil {
		email = payload.Customer.Email
	}
	phone := payload.Phone
	if phone == "" && payload.Customer != nil {
		phone = payload.Customer.Phone
	}

	subtotal := parseMoney(payload.SubtotalPrice)
	tax := parseMoney(payload.TotalTax)
	total := parseMoney(payload.TotalPrice)
	shippingCost := total - subtotal - tax
	if shippingCost < 0 {
		shippingCost = 0
	}

	externalCopy := externalID
	return &domain.Order{
		OrderNumber:       payload.Name,
		ExternalOrderID:   &externalCopy,
		Email:             email,
		Phone:             phone,
		Subtotal:          subtotal,
		Tax:               tax,
		Shipping:          shippingCost,
		Total:             total,
		Currency:          payload.Currency,
		PaymentMethod:     "external",
		PaymentStatus:     domain.PaymentStatusSuccess,
		ShippingAddress:   shipping,
		BillingAddress:    billing,
		FulfillmentStatus: domain.FulfillmentStatusPending,
		Tags:              SplitTags(payload.Tags),
	}
}

// buildLineItems maps webhook line items, lifting the design preview URL and
// any provider pin out of the custom properties
func (s *WebhookService) buildLineItems(orderID uuid.UUID, items []WebhookLineItem) []*domain.LineItem {
	out := make([]*domain.LineItem, 0, len(items))
	for _, li := range items {
		item := &domain.LineItem{
			OrderID:      orderID,
			Title:        li.Title,
			VariantTitle: li.VariantTitle,
			SKU:          li.SKU,
			Quantity:     li.Quantity,
			UnitPrice:    parseMoney(li.Price),
			VariantID:    li.VariantID,
			ProductID:    li.ProductID,
		}
		for _, prop := range li.Properties {
			val, ok := prop.Value.(string)
			if !ok || val == "" {
				continue
			}
			switch prop.Name {
			case "_preview_url", "preview_url":
				v := val
				item.PreviewURL = &v
			case "_fulfillment_provider":
				v := val
				item.Provider = &v
			}
		}
		out = append(out, item)
	}
	return out
}

// parseMoney reads Shopify's string-encoded decimal amounts; malformed
// values become zero rather than failing the whole ingestion
func parseMoney(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}
