package fulfillment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/ikonicity-airban/geek-creations-sub000/internal/domain"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/metrics"
	"github.com/ikonicity-airban/geek-creations-sub000/internal/repository"
)

// Dispatcher drains the dispatch job queue and routes orders to POD
// providers. It runs on the elevated write pool; handlers only enqueue.
type Dispatcher struct {
	repos    *repository.Repositories
	registry *Registry
	resolver *Resolver
	logger   *zap.Logger
}

// NewDispatcher creates a dispatcher over the given (writer) repositories
func NewDispatcher(repos *repository.Repositories, registry *Registry, resolver *Resolver, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		repos:    repos,
		registry: registry,
		resolver: resolver,
		logger:   logger,
	}
}

// Run polls the queue until the context is cancelled. One job is processed
// per claim; concurrent dispatchers are safe because ClaimNext uses
// SKIP LOCKED.
func (d *Dispatcher) Run(ctx context.Context, pollInterval time.Duration) {
	d.logger.Info("Dispatch worker started", zap.Duration("poll_interval", pollInterval))
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatch worker stopped")
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

// drain processes claimed jobs until the queue is empty
func (d *Dispatcher) drain(ctx context.Context) {
	for {
		job, err := d.repos.DispatchJob.ClaimNext(ctx)
		if err != nil {
			d.logger.Error("Failed to claim dispatch job", zap.Error(err))
			return
		}
		if job == nil {
			return
		}
		if err := d.ProcessJob(ctx, job); err != nil {
			d.logger.Error("Dispatch job failed",
				zap.String("job_id", job.ID.String()),
				zap.String("order_id", job.OrderID.String()),
				zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// ProcessJob dispatches one order. Items are resolved to providers, grouped,
// and sent as one provider order per group. Every attempt is recorded; the
// job is marked done exactly once.
func (d *Dispatcher) ProcessJob(ctx context.Context, job *domain.DispatchJob) error {
	order, err := d.repos.Order.GetByID(ctx, job.OrderID)
	if err != nil {
		msg := fmt.Sprintf("load order: %v", err)
		if markErr := d.repos.DispatchJob.MarkDone(ctx, job.ID, domain.JobStatusFailed, &msg); markErr != nil {
			return markErr
		}
		metrics.DispatchJobsProcessed.WithLabelValues(string(domain.JobStatusFailed)).Inc()
		return err
	}

	externalID := order.OrderNumber
	if order.ExternalOrderID != nil && *order.ExternalOrderID != "" {
		externalID = *order.ExternalOrderID
	}

	// Tagged orders are parked for admin review; record the skip so the
	// history explains why nothing was sent.
	if order.HasTag(domain.TagManualReview) || order.HasTag(domain.TagPendingAdmin) {
		detail := "order tagged for admin review, dispatch skipped"
		d.recordAttempt(ctx, order, externalID, "", domain.AttemptStatusSkipped, nil, &detail, nil)
		if err := d.repos.DispatchJob.MarkDone(ctx, job.ID, domain.JobStatusSkipped, nil); err != nil {
			return err
		}
		metrics.DispatchJobsProcessed.WithLabelValues(string(domain.JobStatusSkipped)).Inc()
		d.logger.Info("Dispatch skipped for tagged order",
			zap.String("order_id", order.ID.String()),
			zap.Strings("tags", order.Tags))
		return nil
	}

	outcome, err := d.DispatchOrder(ctx, order)
	if err != nil {
		msg := err.Error()
		if markErr := d.repos.DispatchJob.MarkDone(ctx, job.ID, domain.JobStatusFailed, &msg); markErr != nil {
			return markErr
		}
		metrics.DispatchJobsProcessed.WithLabelValues(string(domain.JobStatusFailed)).Inc()
		return err
	}

	jobStatus := domain.JobStatusCompleted
	var lastError *string
	if !outcome.AnySuccess {
		jobStatus = domain.JobStatusFailed
		msg := "all provider dispatches failed"
		lastError = &msg
	}
	if err := d.repos.DispatchJob.MarkDone(ctx, job.ID, jobStatus, lastError); err != nil {
		return err
	}
	metrics.DispatchJobsProcessed.WithLabelValues(string(jobStatus)).Inc()

	d.logger.Info("Dispatch job processed",
		zap.String("order_id", order.ID.String()),
		zap.String("external_order_id", externalID),
		zap.Int("provider_groups", outcome.Groups),
		zap.String("job_status", string(jobStatus)))
	return nil
}

// Outcome summarizes one dispatch of an order across its provider groups
type Outcome struct {
	AnySuccess bool
	AnyFailure bool
	Groups     int
	Providers  []string // providers that accepted their group
}

// DispatchOrder resolves, groups, and dispatches an order's items right now.
// Admin fulfill actions call this directly; the queue path goes through
// ProcessJob. Attempt rows and order status updates happen here either way.
func (d *Dispatcher) DispatchOrder(ctx context.Context, order *domain.Order) (*Outcome, error) {
	externalID := order.OrderNumber
	if order.ExternalOrderID != nil && *order.ExternalOrderID != "" {
		externalID = *order.ExternalOrderID
	}

	items, err := d.repos.LineItem.GetByOrderID(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("load line items: %w", err)
	}

	groups := d.groupByProvider(ctx, order, externalID, items)

	outcome := &Outcome{Groups: len(groups)}
	var lastProvider string

	// Deterministic provider order keeps multi-provider dispatch logs stable
	providers := make([]string, 0, len(groups))
	for p := range groups {
		providers = append(providers, p)
	}
	sort.Strings(providers)

	for _, provider := range providers {
		if d.dispatchGroup(ctx, order, externalID, provider, groups[provider]) {
			outcome.AnySuccess = true
			outcome.Providers = append(outcome.Providers, provider)
			lastProvider = provider
		} else {
			outcome.AnyFailure = true
		}
	}

	// A failed resolution with no dispatchable groups is a failure too
	if len(groups) == 0 {
		outcome.AnyFailure = true
	}

	switch {
	case outcome.AnySuccess:
		provider := lastProvider
		if err := d.repos.Order.UpdateFulfillment(ctx, order.ID, &provider, domain.FulfillmentStatusProcessing, nil); err != nil {
			d.logger.Error("Failed to update order after dispatch",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	case order.FulfillmentStatus.CanTransitionTo(domain.FulfillmentStatusFailed):
		if err := d.repos.Order.UpdateFulfillment(ctx, order.ID, nil, domain.FulfillmentStatusFailed, nil); err != nil {
			d.logger.Error("Failed to mark order dispatch failed",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	return outcome, nil
}

// groupByProvider resolves each item and buckets dispatchable items by
// provider. A resolution failure records an error attempt for that item and
// leaves its siblings untouched.
func (d *Dispatcher) groupByProvider(ctx context.Context, order *domain.Order, externalID string, items []*domain.LineItem) map[string][]OrderItem {
	groups := make(map[string][]OrderItem)
	for _, item := range items {
		provider, err := d.resolver.Resolve(ctx, item)
		if err != nil {
			detail := err.Error()
			d.recordAttempt(ctx, order, externalID, "", domain.AttemptStatusError, nil, &detail, nil)
			d.logger.Warn("Line item provider resolution failed",
				zap.String("order_id", order.ID.String()),
				zap.String("sku", item.SKU),
				zap.Error(err))
			continue
		}
		if item.Provider == nil || *item.Provider != provider {
			if err := d.repos.LineItem.UpdateProvider(ctx, item.ID, provider); err != nil {
				d.logger.Warn("Failed to persist resolved provider",
					zap.String("line_item_id", item.ID.String()), zap.Error(err))
			}
		}
		groups[provider] = append(groups[provider], OrderItem{
			SKU:        item.SKU,
			Title:      item.Title,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			VariantID:  item.VariantID,
			PreviewURL: item.PreviewURL,
		})
	}
	return groups
}

// dispatchGroup sends one provider order and records the attempt. Returns
// whether the provider accepted the order.
func (d *Dispatcher) dispatchGroup(ctx context.Context, order *domain.Order, externalID, provider string, items []OrderItem) bool {
	adapter, ok := d.registry.Get(provider)
	if !ok {
		detail := fmt.Sprintf("no adapter registered for provider %q", provider)
		d.recordAttempt(ctx, order, externalID, provider, domain.AttemptStatusError, nil, &detail, nil)
		metrics.DispatchAttempts.WithLabelValues(provider, string(domain.AttemptStatusError)).Inc()
		return false
	}

	req := OrderRequest{
		ExternalID: externalID,
		Recipient:  order.ShippingAddress,
		Items:      items,
		RetailCosts: &RetailCosts{
			Currency: order.Currency,
			Subtotal: order.Subtotal,
			Tax:      order.Tax,
			Shipping: order.Shipping,
			Total:    order.Total,
		},
	}

	start := time.Now()
	result, err := adapter.CreateOrder(ctx, req)
	metrics.ProviderLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	if err != nil {
		detail := err.Error()
		d.recordAttempt(ctx, order, externalID, provider, domain.AttemptStatusFailed, nil, &detail, nil)
		metrics.DispatchAttempts.WithLabelValues(provider, string(domain.AttemptStatusFailed)).Inc()
		d.logger.Warn("Provider dispatch failed",
			zap.String("order_id", order.ID.String()),
			zap.String("provider", provider),
			zap.Error(err))
		return false
	}

	var podOrderID *string
	if result.PODOrderID != "" {
		podOrderID = &result.PODOrderID
	}
	var detail *string
	if result.Status != "" {
		detail = &result.Status
	}
	d.recordAttempt(ctx, order, externalID, provider, domain.AttemptStatusSuccess, podOrderID, detail, result.Raw)
	metrics.DispatchAttempts.WithLabelValues(provider, string(domain.AttemptStatusSuccess)).Inc()

	if result.Raw != nil {
		if err := d.repos.Order.UpdateFulfillment(ctx, order.ID, &provider, domain.FulfillmentStatusProcessing, result.Raw); err != nil {
			d.logger.Warn("Failed to store provider response",
				zap.String("order_id", order.ID.String()), zap.Error(err))
		}
	}

	d.logger.Info("Provider dispatch succeeded",
		zap.String("order_id", order.ID.String()),
		zap.String("provider", provider),
		zap.String("pod_order_id", result.PODOrderID),
		zap.Int("items", len(items)))
	return true
}

// recordAttempt appends one row to the dispatch log. Logging failures here
// must not mask the dispatch outcome, so errors are logged and swallowed.
func (d *Dispatcher) recordAttempt(ctx context.Context, order *domain.Order, externalID, provider string, status domain.AttemptStatus, podOrderID, detail *string, raw map[string]interface{}) {
	attempt := &domain.FulfillmentAttempt{
		OrderID:         order.ID,
		ExternalOrderID: externalID,
		Provider:        provider,
		Status:          status,
		PODOrderID:      podOrderID,
		Detail:          detail,
		RawResponse:     raw,
	}
	if err := d.repos.FulfillmentAttempt.Create(ctx, attempt); err != nil {
		d.logger.Error("Failed to record fulfillment attempt",
			zap.String("order_id", order.ID.String()),
			zap.String("provider", provider),
			zap.Error(err))
	}
}
