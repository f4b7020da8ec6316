package model

import "github.com/Astemirdum/my-little-library/pkg/validate"

// Reason classifies a failed ActionResult for the HTTP layer.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonValidation
	ReasonNotFound
	ReasonConflict
	ReasonAuth
	ReasonStorage
)

// ActionResult is {success:true, data} or {success:false, error, fieldErrors?}.
type ActionResult struct {
	Success     bool                 `json:"success"`
	Data        any                  `json:"data,omitempty"`
	Error       string               `json:"error,omitempty"`
	FieldErrors validate.FieldErrors `json:"fieldErrors,omitempty"`
	Reason      Reason               `json:"-"`
}

func Ok(data any) ActionResult {
	return ActionResult{Success: true, Data: data}
}

func Failure(reason Reason, msg string) ActionResult {
	return ActionResult{Error: msg, Reason: reason}
}

func Invalid(fieldErrors validate.FieldErrors) ActionResult {
	return ActionResult{
		Error:       "Validation failed",
		FieldErrors: fieldErrors,
		Reason:      ReasonValidation,
	}
}
