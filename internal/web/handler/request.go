package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/gocinema/gocinema/internal/apperr"
)

// Page is the body of list responses.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// ParamID parses the numeric path parameter name.
func ParamID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.New(apperr.ErrValidation, "Please, enter valid id.", apperr.PathParam(name))
	}

	return id, nil
}

// Paging reads limit and offset from the query string.
func Paging(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", DefaultPageSize)
	if limit <= 0 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// Bind parses the request body into out. JSON and form bodies are accepted.
func Bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperr.New(apperr.ErrValidation, "Request body is malformed.", "")
	}

	return nil
}
