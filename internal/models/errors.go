package models

import "errors"

// Sentinel errors shared by the feature repositories. Handlers discriminate
// with errors.Is and translate to HTTP statuses; everything else surfaces as a
// store error.
var (
	// ErrNotFound means the referenced circle or record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized means the authorization policy denied the operation.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrCircleFull means a registration was rejected at participants_limit.
	ErrCircleFull = errors.New("circle is full")
	// ErrAlreadyRegistered means the (circle, user) registration already exists.
	ErrAlreadyRegistered = errors.New("already registered")
)
