package staff

import "errors"

var (
	ErrStaffNotFound            = errors.New("staff member not found")
	ErrZoneNotFound             = errors.New("zone not found")
	ErrZoneNameExists           = errors.New("zone name already exists")
	ErrPayGroupNotFound         = errors.New("pay group not found")
	ErrPayGroupNameExists       = errors.New("pay group name already exists")
	ErrPayGroupInUse            = errors.New("pay group is still assigned to staff")
	ErrInsufficientLeaveBalance = errors.New("insufficient leave balance")
)
