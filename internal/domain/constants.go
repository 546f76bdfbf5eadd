package domain

const (
	RoleOwner = "OWNER"
	RoleAdmin = "ADMIN"
)

// Transaction lifecycle. Values are persisted as-is and are part of the
// dashboard API contract, so they stay lowercase.
const (
	TransactionStatusPending = "pending"
	TransactionStatusPaid    = "paid"
	TransactionStatusFailed  = "failed"
	TransactionStatusFree    = "free"
)

const (
	TransactionTypeSession      = "photobooth_session"
	TransactionTypeSubscription = "subscription"
)

const (
	PayoutStatusPending = "pending"
	PayoutStatusPaid    = "paid"
)

const (
	VoucherTypePercent = "percent"
	VoucherTypeFixed   = "fixed"
)

const (
	SessionStatusCreated         = "created"
	SessionStatusAwaitingPayment = "awaiting_payment"
	SessionStatusActive          = "active"
	SessionStatusCompleted       = "completed"
	SessionStatusExpired         = "expired"
)

const (
	SubscriptionStatusActive  = "active"
	SubscriptionStatusExpired = "expired"
)

// MonthKey layout for MonthlyEarning.Month ("YYYY-MM").
const MonthKeyLayout = "2006-01"

// Admin-editable system setting keys.
const SettingPlatformFeePercent = "platform_fee_percent"
