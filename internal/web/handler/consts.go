package handler

const (
	// RootPath is the root path the route group.
	RootPath = "/"

	// DefaultPageSize is the page size of list endpoints without a limit.
	DefaultPageSize = 25

	// MaxPageSize caps the limit query parameter.
	MaxPageSize = 100
)
