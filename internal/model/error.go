package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON           = "INVALID_JSON"
	ErrCodeInvalidInput          = "INVALID_INPUT"
	ErrCodeInvalidCampaignConfig = "INVALID_CAMPAIGN_CONFIG"
	ErrCodeCampaignNotFound      = "CAMPAIGN_NOT_FOUND"
	ErrCodeCampaignInactive      = "CAMPAIGN_INACTIVE"
	ErrCodeCampaignExpired       = "CAMPAIGN_EXPIRED"
	ErrCodeCustomerNotTargeted   = "CUSTOMER_NOT_TARGETED"
	ErrCodeRuleNotSatisfied      = "RULE_NOT_SATISFIED"
	ErrCodeUsageLimitExceeded    = "USAGE_LIMIT_EXCEEDED"
	ErrCodeCustomerUsageLimit    = "CUSTOMER_USAGE_LIMIT_EXCEEDED"
	ErrCodeBudgetExhausted       = "BUDGET_EXHAUSTED"
	ErrCodeRedemptionConflict    = "REDEMPTION_CONFLICT"
	ErrCodeUnauthorised          = "UNAUTHORIZED"
	ErrCodeInternalError         = "INTERNAL_ERROR"
)

// DomainError carries a stable error code alongside a human-readable message.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidInput          = NewDomainError(ErrCodeInvalidInput, "Subtotal and delivery fee must be non-negative and customer ID must be set")
	ErrInvalidCampaignConfig = NewDomainError(ErrCodeInvalidCampaignConfig, "Campaign configuration is invalid")
	ErrCampaignNotFound      = NewDomainError(ErrCodeCampaignNotFound, "Campaign not found")
	ErrCampaignInactive      = NewDomainError(ErrCodeCampaignInactive, "Campaign is inactive or outside its schedule")
	ErrCampaignExpired       = NewDomainError(ErrCodeCampaignExpired, "Campaign validity window has ended")
	ErrCustomerNotTargeted   = NewDomainError(ErrCodeCustomerNotTargeted, "Customer is not targeted by this campaign")
	ErrRuleNotSatisfied      = NewDomainError(ErrCodeRuleNotSatisfied, "Cart does not satisfy the campaign rule")
	ErrUsageLimitExceeded    = NewDomainError(ErrCodeUsageLimitExceeded, "Campaign usage limit has been reached")
	ErrCustomerUsageLimit    = NewDomainError(ErrCodeCustomerUsageLimit, "Customer usage limit for this campaign has been reached")
	ErrBudgetExhausted       = NewDomainError(ErrCodeBudgetExhausted, "Campaign budget has been exhausted")
	ErrRedemptionConflict    = NewDomainError(ErrCodeRedemptionConflict, "Concurrent redemption conflict, safe to retry")
)
