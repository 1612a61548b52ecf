package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrFilingNotFound   = errors.New("filing not found")
	ErrDuplicateFiling  = errors.New("filing with this accession number already exists")
	ErrInvalidDateRange = errors.New("invalid date range")
)
