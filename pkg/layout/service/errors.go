// Copyright 2025 NexusGrid Authors
// SPDX-License-Identifier: Apache-2.0

package service

import "fmt"

// ErrorCode represents a domain-level error code.
type ErrorCode int

const (
	ErrCodeNone ErrorCode = iota

	// ErrCodeInvalidHierarchy marks a structural rule violation. Always
	// rejected before any write; never coerced.
	ErrCodeInvalidHierarchy

	// ErrCodeParentNotFound marks a dangling parent reference.
	ErrCodeParentNotFound

	// ErrCodeNodeNotFound marks a dangling node reference.
	ErrCodeNodeNotFound

	// ErrCodeLabNotFound marks a missing lab record.
	ErrCodeLabNotFound

	// ErrCodeAssetNotFound marks a missing asset record.
	ErrCodeAssetNotFound

	// ErrCodeHasChildren marks a delete blocked by policy: direct
	// deletes never cascade.
	ErrCodeHasChildren

	// ErrCodeRoleLimitReached marks a staff assignment over the
	// configured per-role lab limit.
	ErrCodeRoleLimitReached

	// ErrCodeValidation marks malformed input.
	ErrCodeValidation

	// ErrCodeReconcileFailed marks a transactional abort during a bulk
	// subtree save.
	ErrCodeReconcileFailed

	// ErrCodeInternal marks an unexpected persistence failure.
	ErrCodeInternal
)

// NoItem is the Item value for errors that are not tied to one entry of
// a reconcile input list.
const NoItem = -1

// Error is a domain-level error with enough context for the caller to
// pinpoint the failing input. Item is the zero-based index into the
// desired-children list for reconcile errors, or NoItem.
type Error struct {
	Code    ErrorCode
	Message string
	Item    int
	Err     error
}

func (e *Error) Error() string {
	if e.Item != NoItem {
		if e.Err != nil {
			return fmt.Sprintf("item %d: %s: %v", e.Item, e.Message, e.Err)
		}
		return fmt.Sprintf("item %d: %s", e.Item, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an Error without item context.
func newError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Item: NoItem}
}

// wrapError builds an Error wrapping an underlying cause.
func wrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Item: NoItem, Err: err}
}

// itemError builds an Error tied to one reconcile input entry.
func itemError(code ErrorCode, item int, message string) *Error {
	return &Error{Code: code, Message: message, Item: item}
}
