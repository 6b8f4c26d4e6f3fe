// Package schema validates user payloads against the backend's declared
// constraints before they leave the device, so obviously malformed account
// data fails fast instead of burning a network round trip on a 400.
package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// UserValidator validates account payloads against the backend user schema.
type UserValidator struct {
	create *gojsonschema.Schema
	update *gojsonschema.Schema
}

// NewUserValidator compiles the embedded schemas.
func NewUserValidator() (*UserValidator, error) {
	create, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader([]byte(userCreateSchema)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile user create schema: %w", err)
	}
	update, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader([]byte(userUpdateSchema)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile user update schema: %w", err)
	}
	return &UserValidator{create: create, update: update}, nil
}

// ValidateCreate checks an account-creation payload.
func (v *UserValidator) ValidateCreate(payload interface{}) error {
	return validate(v.create, payload, "user create")
}

// ValidateUpdate checks a partial profile update.
func (v *UserValidator) ValidateUpdate(payload interface{}) error {
	return validate(v.update, payload, "user update")
}

func validate(schema *gojsonschema.Schema, payload interface{}, what string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", what, err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		var errs []string
		for _, e := range result.Errors() {
			errs = append(errs, fmt.Sprintf("- %s", e))
		}
		return fmt.Errorf("%s validation failed:\n%s", what, strings.Join(errs, "\n"))
	}
	return nil
}

// Constraints mirror the backend's pydantic user schemas: username 3-50
// chars of [A-Za-z0-9_-], password at least 6 chars, full_name at most 100.
const userCreateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "User Create",
  "type": "object",
  "required": ["email", "username", "password"],
  "properties": {
    "email": {
      "type": "string",
      "pattern": "^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,}$"
    },
    "username": {
      "type": "string",
      "minLength": 3,
      "maxLength": 50,
      "pattern": "^[a-zA-Z0-9_-]+$"
    },
    "full_name": {
      "type": "string",
      "maxLength": 100
    },
    "password": {
      "type": "string",
      "minLength": 6,
      "maxLength": 100
    },
    "is_active": {
      "type": "boolean"
    }
  }
}`

const userUpdateSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "User Update",
  "type": "object",
  "properties": {
    "email": {
      "type": "string",
      "pattern": "^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\\.[a-zA-Z]{2,}$"
    },
    "username": {
      "type": "string",
      "minLength": 3,
      "maxLength": 50,
      "pattern": "^[a-zA-Z0-9_-]+$"
    },
    "full_name": {
      "type": "string",
      "maxLength": 100
    },
    "avatar_url": {
      "type": "string"
    },
    "password": {
      "type": "string",
      "minLength": 6,
      "maxLength": 100
    },
    "is_active": {
      "type": "boolean"
    }
  }
}`
