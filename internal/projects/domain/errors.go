package domain

import "errors"

var (
	ErrNotFound       = errors.New("project not found")
	ErrVendorNotFound = errors.New("vendor not found")
	ErrNameRequired   = errors.New("project name required")
)
