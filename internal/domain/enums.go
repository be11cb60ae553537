package domain

// FulfillmentStatus represents where an order sits in the fulfillment flow
type FulfillmentStatus string

const (
	// PENDING - order created, no dispatch yet
	FulfillmentStatusPending FulfillmentStatus = "pending"
	// PROCESSING - dispatched to a POD provider, awaiting shipment
	FulfillmentStatusProcessing FulfillmentStatus = "processing"
	// SHIPPED - tracking assigned
	FulfillmentStatusShipped FulfillmentStatus = "shipped"
	// DELIVERED - confirmed delivered
	FulfillmentStatusDelivered FulfillmentStatus = "delivered"
	// FAILED - dispatch failed; admin intervention required
	FulfillmentStatusFailed FulfillmentStatus = "failed"
)

// IsValid checks if the fulfillment status is valid
func (s FulfillmentStatus) IsValid() bool {
	switch s {
	case FulfillmentStatusPending,
		FulfillmentStatusProcessing,
		FulfillmentStatusShipped,
		FulfillmentStatusDelivered,
		FulfillmentStatusFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid. Failed orders can
// be re-dispatched by an admin, so failed -> processing is allowed.
func (s FulfillmentStatus) CanTransitionTo(newStatus FulfillmentStatus) bool {
	switch s {
	case FulfillmentStatusPending:
		return newStatus == FulfillmentStatusProcessing ||
			newStatus == FulfillmentStatusShipped ||
			newStatus == FulfillmentStatusFailed
	case FulfillmentStatusProcessing:
		return newStatus == FulfillmentStatusShipped ||
			newStatus == FulfillmentStatusFailed
	case FulfillmentStatusShipped:
		return newStatus == FulfillmentStatusDelivered
	case FulfillmentStatusFailed:
		return newStatus == FulfillmentStatusProcessing ||
			newStatus == FulfillmentStatusShipped
	case FulfillmentStatusDelivered:
		return false // Terminal state
	default:
		return false
	}
}

// AttemptStatus is the outcome of one dispatch attempt
type AttemptStatus string

const (
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailed  AttemptStatus = "failed"
	// ERROR - the attempt never reached the provider (unknown provider,
	// missing data)
	AttemptStatusError AttemptStatus = "error"
	// SKIPPED - dispatch intentionally not performed (manual-review tag)
	AttemptStatusSkipped AttemptStatus = "skipped"
)

// JobStatus is the state of a dispatch job
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusSkipped   JobStatus = "skipped"
)

// Fulfillment provider names. Adding a provider means registering an adapter
// under a new name; nothing here switches on these beyond registry lookup.
const (
	ProviderPrintful   = "printful"
	ProviderPrintify   = "printify"
	ProviderIkonshop   = "ikonshop"
	ProviderManual     = "manual"
	ProviderLocalPrint = "local_print"
)

// Payment methods accepted at checkout
const (
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCrypto       = "crypto"
)

// Payment providers
const (
	PaymentProviderPaystack    = "paystack"
	PaymentProviderFlutterwave = "flutterwave"
	PaymentProviderCrypto      = "crypto"
)

// Normalized payment verification statuses, regardless of provider vocabulary
const (
	PaymentStatusPending   = "pending"
	PaymentStatusSuccess   = "success"
	PaymentStatusFailed    = "failed"
	PaymentStatusCancelled = "cancelled"
	PaymentStatusAbandoned = "abandoned"
)

// Order tags that park an order for admin review instead of dispatching
const (
	TagManualReview = "manual-review"
	TagPendingAdmin = "pending-admin"
)
