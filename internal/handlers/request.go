package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	appErrors "github.com/charlesng35/formstore/pkg/errors"
	"github.com/charlesng35/formstore/pkg/response"
	appValidator "github.com/charlesng35/formstore/pkg/validator"
)

// bindAndValidate binds the JSON payload into dest and runs struct validation rules.
// Syntax errors produce ErrBadRequest; an empty body, a field of the wrong JSON
// type or a failed rule produce invalid. When binding fails, an error response
// is written and false is returned.
func bindAndValidate[T any](c *gin.Context, dest *T, invalid *appErrors.AppError) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) || errors.Is(err, io.EOF) {
			response.Error(c, invalid.WithInternal(err))
			return false
		}
		response.Error(c, appErrors.ErrBadRequest.WithInternal(err))
		return false
	}

	if err := appValidator.ValidateStruct(dest); err != nil {
		response.Error(c, invalid.WithInternal(err))
		return false
	}

	return true
}

// requestContext returns the request context; it is background for contexts
// built without a request in tests.
func requestContext(c *gin.Context) context.Context {
	if c == nil || c.Request == nil {
		return context.Background()
	}
	return c.Request.Context()
}
