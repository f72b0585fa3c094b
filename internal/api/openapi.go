// SPDX-License-Identifier: MIT

package api

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers/legacy"

	"github.com/ManuGH/smsmanager/internal/log"
)

//go:embed openapi.yaml
var openAPISpec []byte

// OpenAPISpec returns the embedded API contract.
func OpenAPISpec() []byte {
	return openAPISpec
}

// LoadOpenAPI parses and validates the embedded contract.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	doc, err := openapi3.NewLoader().LoadFromData(openAPISpec)
	if err != nil {
		return nil, fmt.Errorf("load openapi: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate openapi: %w", err)
	}
	return doc, nil
}

// validateRequests rejects request parameters and bodies that do not match
// the contract with 422. Requests outside the contract pass through so the
// router answers them.
func validateRequests(doc *openapi3.T) (func(http.Handler) http.Handler, error) {
	router, err := legacy.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi router: %w", err)
	}
	opts := &openapi3filter.Options{
		AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			route, pathParams, err := router.FindRoute(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			input := &openapi3filter.RequestValidationInput{
				Request:    r,
				PathParams: pathParams,
				Route:      route,
				Options:    opts,
			}
			if err := openapi3filter.ValidateRequest(r.Context(), input); err != nil {
				logger := log.WithComponentFromContext(r.Context(), "api")
				logger.Debug().
					Err(err).
					Str(log.FieldEvent, "request.invalid").
					Str(log.FieldPath, r.URL.Path).
					Msg("request rejected by contract")
				writeText(w, http.StatusUnprocessableEntity, requestErrorText(err))
				return
			}
			next.ServeHTTP(w, r)
		})
	}, nil
}

func requestErrorText(err error) string {
	var reqErr *openapi3filter.RequestError
	if errors.As(err, &reqErr) {
		var schemaErr *openapi3.SchemaError
		if errors.As(reqErr.Err, &schemaErr) {
			field := schemaErr.JSONPointer()
			if len(field) > 0 {
				return fmt.Sprintf("Invalid request: %s: %s", strings.Join(field, "."), schemaErr.Reason)
			}
			return "Invalid request: " + schemaErr.Reason
		}
		if reqErr.Reason != "" {
			return "Invalid request: " + reqErr.Reason
		}
	}
	return "Invalid request: " + err.Error()
}
