package pag

import "errors"

// ErrNoPages indicates that a Navigator was requested with an empty page list.
var ErrNoPages = errors.New("at least one page is required")

// ErrInvalidTimeout indicates that a non-positive idle timeout was given.
var ErrInvalidTimeout = errors.New("timeout must be positive")

// ErrPageTooSmall indicates that prefix and suffix leave no room for content on a page.
var ErrPageTooSmall = errors.New("prefix and suffix do not fit in the page size")
