package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPage    = errors.New("page number must be >= 1")
	ErrInvalidSortKey = errors.New("invalid sort key")
	// ErrSuperseded is returned by a fetch whose result was discarded because
	// a newer page was requested while it was in flight.
	ErrSuperseded = errors.New("fetch superseded by a newer request")
)

// TransportError is a network or decoding failure of the record source.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// FetchError is what the controller reports when loading a page failed.
type FetchError struct {
	Page int
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch page %d: %v", e.Page, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type DuplicateError struct {
	ID int64
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("post %d already exists on the current page", e.ID)
}

type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("post %d not found on the current page", e.ID)
}
