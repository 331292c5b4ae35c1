package apperrors

import "errors"

var (
	ErrInvalidSchema    = errors.New("invalid schema snapshot")
	ErrNotFound         = errors.New("not found")
	ErrConversionFailed = errors.New("conversion failed")
	ErrRowCountTimeout  = errors.New("row count fetch timed out")
)
