package jsonschema

import "errors"

var (
	ErrInvalidSchema          = errors.New("invalid schema")
	ErrSchemaValidationSystem = errors.New("schema validation system error")
	ErrSchemaValidationFailed = errors.New("schema validation failed")
)
