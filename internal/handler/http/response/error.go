package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/staffpay/staffpay-backend-go/internal/domain/attendance"
	"github.com/staffpay/staffpay-backend-go/internal/domain/auth"
	"github.com/staffpay/staffpay-backend-go/internal/domain/holiday"
	"github.com/staffpay/staffpay-backend-go/internal/domain/leave"
	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/domain/roster"
	"github.com/staffpay/staffpay-backend-go/internal/domain/settings"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	var configErr *payroll.ConfigurationError
	if errors.As(err, &configErr) {
		ConfigurationError(w, configErr.Error())
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrAdminPrivilegeRequired):
		Forbidden(w, "Admin privilege required")

	// Staff domain errors
	case errors.Is(err, staff.ErrStaffNotFound):
		NotFound(w, "Staff member not found")
	case errors.Is(err, staff.ErrZoneNotFound):
		NotFound(w, "Zone not found")
	case errors.Is(err, staff.ErrPayGroupNotFound):
		NotFound(w, "Pay group not found")
	case errors.Is(err, staff.ErrZoneNameExists):
		Conflict(w, "Zone name already exists")
	case errors.Is(err, staff.ErrPayGroupNameExists):
		Conflict(w, "Pay group name already exists")
	case errors.Is(err, staff.ErrPayGroupInUse):
		Conflict(w, "Pay group is still assigned to staff")
	case errors.Is(err, staff.ErrInsufficientLeaveBalance):
		ValidationError(w, map[string]string{"type": "insufficient leave balance"})

	// Attendance domain errors
	case errors.Is(err, attendance.ErrInvalidScanKind):
		ValidationError(w, map[string]string{"kind": "invalid scan kind"})
	case errors.Is(err, attendance.ErrScanNotFound):
		NotFound(w, "Scan not found")

	// Holiday domain errors
	case errors.Is(err, holiday.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, holiday.ErrProviderFailed):
		BadGateway(w, "PROVIDER_UNAVAILABLE", "Holiday provider unavailable")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRecordNotFound):
		NotFound(w, "Leave record not found")
	case errors.Is(err, leave.ErrLeaveRecordAlreadyProcessed):
		Conflict(w, "Leave record already processed")
	case errors.Is(err, leave.ErrLeaveDayAlreadyApproved):
		Conflict(w, err.Error())

	// Roster domain errors
	case errors.Is(err, roster.ErrRosterNotFound):
		NotFound(w, "Roster not found")
	case errors.Is(err, roster.ErrTemplateNotFound):
		NotFound(w, "Roster template not found")
	case errors.Is(err, roster.ErrDuplicateAssignment):
		Conflict(w, err.Error())
	case errors.Is(err, roster.ErrTemplateNameExists):
		Conflict(w, "Roster template name already exists")

	// Settings domain errors
	case errors.Is(err, settings.ErrPinNotConfigured):
		NotFound(w, "PIN not configured")

	// Payroll domain errors
	case errors.Is(err, payroll.ErrRunNotFound):
		NotFound(w, "Payroll run not found")
	case errors.Is(err, payroll.ErrOverrideNotFound):
		NotFound(w, "Daily override not found")
	case errors.Is(err, payroll.ErrTaxConfigNotFound):
		ConfigurationError(w, "Tax config has not been set up")
	case errors.Is(err, payroll.ErrRunFinalized):
		Conflict(w, "Payroll run is already finalized")
	case errors.Is(err, payroll.ErrFinalizeInProgress):
		Conflict(w, "Payroll run is being finalized by another request")
	case errors.Is(err, payroll.ErrUnresolvedFlags):
		Conflict(w, err.Error())
	case errors.Is(err, payroll.ErrPeriodFinalized):
		Conflict(w, "Date falls inside a finalized payroll run")

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
