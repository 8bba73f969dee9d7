package usecase

import "errors"

// Sentinel errors for the use case layer. The HTTP boundary matches
// these with errors.Is to pick status codes.
var (
	// Not found errors
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrStepNotFound     = errors.New("approval step not found")
	ErrIssueNotFound    = errors.New("issue not found")
	ErrSignalNotFound   = errors.New("monitoring signal not found")
	ErrAppetiteNotFound = errors.New("risk appetite not found")

	// Validation errors
	ErrEmptyApprovalChain = errors.New("approval chain must contain at least one approver")
	ErrInvalidInput       = errors.New("invalid input")

	// Business logic errors
	ErrWorkflowCompleted      = errors.New("workflow is already completed")
	ErrWorkflowAlreadyActive  = errors.New("an active workflow of this type already exists for the vendor")
	ErrStepAlreadyDecided     = errors.New("this step has already been decided")
	ErrOutOfOrderDecision     = errors.New("decision submitted out of step order")
	ErrCannotCancelCompleted  = errors.New("cannot cancel a completed workflow")
	ErrOpenIssuesRemain       = errors.New("cannot offboard vendor with open issues")
	ErrIssueCompleted         = errors.New("issue is already closed or risk-accepted")
	ErrValidationNotRequested = errors.New("issue is not pending validation")
	ErrInvalidStatusChange    = errors.New("vendor status transition not allowed")

	// Access control errors
	ErrPermissionDenied = errors.New("permission denied")
)
