package leave

import "errors"

var (
	ErrLeaveRecordNotFound         = errors.New("leave record not found")
	ErrLeaveRecordAlreadyProcessed = errors.New("leave record already processed")
	ErrLeaveDayAlreadyApproved     = errors.New("leave day already approved")
)
