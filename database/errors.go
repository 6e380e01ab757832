package database

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
	// ErrPredicateFailed is returned by a conditional write whose
	// condition no longer held when the store evaluated it.
	ErrPredicateFailed = errors.New("write condition not satisfied")
)
