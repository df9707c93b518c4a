// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package checks

import (
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// OpenapiFromPerfData generates an OpenAPI schema for the result wrapper
// around the check's performance data type.
func OpenapiFromPerfData[T any](data T) (*openapi3.SchemaRef, error) {
	checkSchema, err := openapi3gen.NewSchemaRefForValue(Result{Data: data}, openapi3.Schemas{})
	if err != nil {
		return nil, err
	}
	return checkSchema, nil
}
