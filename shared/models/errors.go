package models

import "errors"

// Application-wide standard errors
var (
	// Common Resource/DB Errors
	ErrNotFound        = errors.New("resource not found") // General not found
	ErrPackageNotFound = errors.New("style package not found")

	// Customization Errors
	ErrFieldPredefined = errors.New("field is predefined and cannot be edited")
	ErrUnknownField    = errors.New("field is not part of the current package")
	ErrNoActiveScope   = errors.New("no package or context selected")

	// General Request/Server Errors
	ErrInternalServer = errors.New("internal server error")
	ErrBadRequest     = errors.New("bad request")
	ErrInvalidInput   = errors.New("invalid input data")
)
