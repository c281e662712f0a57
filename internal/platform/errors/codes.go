// Package errors provides structured error handling for the campaign service.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// CodeInvalidArgument represents malformed request input.
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Wizard errors
	CodeWizardStepOutOfRange  Code = "WIZARD_STEP_OUT_OF_RANGE"
	CodeWizardStepBlocked     Code = "WIZARD_STEP_BLOCKED"
	CodeWizardIncomplete      Code = "WIZARD_INCOMPLETE"
	CodeWizardBusy            Code = "WIZARD_SUBMISSION_IN_FLIGHT"
	CodeWizardInvalidPlatform Code = "WIZARD_INVALID_PLATFORM"

	// Track errors
	CodeTrackMissingID Code = "TRACK_MISSING_ID"

	// Budget errors
	CodeBudgetNotPositive Code = "BUDGET_NOT_POSITIVE"

	// Coupon errors
	CodeCouponEmptyCode   Code = "COUPON_EMPTY_CODE"
	CodeCouponInvalidKind Code = "COUPON_INVALID_KIND"
	CodeCouponNotVerified Code = "COUPON_NOT_VERIFIED"
	CodeCouponUnavailable Code = "COUPON_SERVICE_UNAVAILABLE"

	// Checkout errors
	CodeCheckoutInvalidTransition Code = "CHECKOUT_INVALID_TRANSITION"
	CodeCheckoutQRIncomplete      Code = "CHECKOUT_QR_PAYLOAD_INCOMPLETE"
	CodeCheckoutExpired           Code = "CHECKOUT_EXPIRED"
	CodeCheckoutUnverified        Code = "CHECKOUT_PAYMENT_UNVERIFIED"
	CodePaymentCreationFailed     Code = "PAYMENT_CREATION_FAILED"

	// Auth errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes for the REST API.
func (c Code) HTTPStatus() int {
	switch c {
	// Bad request - validation failures, bad input
	case CodeInvalidArgument,
		CodeWizardStepOutOfRange,
		CodeWizardInvalidPlatform,
		CodeTrackMissingID,
		CodeBudgetNotPositive,
		CodeCouponEmptyCode,
		CodeCouponInvalidKind:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeWizardStepBlocked,
		CodeWizardIncomplete,
		CodeWizardBusy,
		CodeCouponNotVerified,
		CodeCheckoutInvalidTransition,
		CodeCheckoutExpired,
		CodeCheckoutUnverified:
		return http.StatusConflict

	case CodeUnauthenticated:
		return http.StatusUnauthorized

	case CodeNotFound:
		return http.StatusNotFound

	// Upstream collaborator failures are retryable by the client
	case CodeCouponUnavailable,
		CodePaymentCreationFailed:
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}
