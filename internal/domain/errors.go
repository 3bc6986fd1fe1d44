// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates a business-rule conflict: a duplicate unique code,
// an attempt to delete a referenced entity, or a state that forbids the
// requested change.
var ErrConflict = errors.New("conflict")

// ErrValidation indicates a malformed request rejected before any store access.
var ErrValidation = errors.New("validation failed")

// ErrIntegrity indicates a referenced foreign id does not exist when
// creating or updating a composite object.
var ErrIntegrity = errors.New("referenced entity does not exist")
