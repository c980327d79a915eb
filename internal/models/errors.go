package models

import "errors"

// Custom errors
var (
	ErrInvalidConfiguration = errors.New("invalid calibration configuration")
	ErrDegenerateInput      = errors.New("degenerate single-class input")
	ErrUnknownCondition     = errors.New("unknown condition")
	ErrColumnMissing        = errors.New("required column missing from dataset")
	ErrModelNotReady        = errors.New("no calibrated model for condition")
	ErrNotFound             = errors.New("record not found")
	ErrDuplicateKey         = errors.New("duplicate key violation")
)
