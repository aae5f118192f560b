// Package validation checks configuration before a client is built.
//
// Struct tag validation (go-playground/validator) reports the first failing
// field by its `label` tag; a missing required value becomes a MISSING_FIELD
// error and any other rule an INVALID_CONFIG error:
//
//	type settings struct {
//	    BaseURL string `validate:"required" label:"base URL"`
//	}
//	err := validation.Validate(s) // MISSING_FIELD: missing required field: base URL
//
// Programmatic validation collects errors for rules tags cannot express:
//
//	v := validation.New()
//	v.Required("token URL", cfg.TokenURL).AbsoluteURL("token URL", cfg.TokenURL)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
