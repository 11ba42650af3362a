package handler

import "errors"

// ErrDependencyNil is returned by Init when the app or a handler dependency is nil.
var ErrDependencyNil = errors.New("app or handler dependency is nil")
