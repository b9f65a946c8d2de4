package attendance

import "errors"

var (
	ErrInvalidScanKind = errors.New("invalid scan kind")
	ErrScanNotFound    = errors.New("scan not found")
)
