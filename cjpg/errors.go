package cjpg

import "errors"

// ErrInvalidCriteria is returned when search criteria fail validation,
// before any remote interaction starts.
var ErrInvalidCriteria = errors.New("cjpg: invalid search criteria")

// ErrSubmit is returned when the query form cannot be filled or submitted.
var ErrSubmit = errors.New("cjpg: query submission failed")
