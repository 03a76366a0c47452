package models

import "errors"

// Validation sentinels shared between the models package and the perk
// service. Handlers match these with errors.Is and answer 400.
var (
	ErrLeadFormFieldID      = errors.New("lead form field id is required")
	ErrLeadFormFieldType    = errors.New("unsupported lead form field type")
	ErrRedirectURLRequired  = errors.New("redirect url is required when redirect is enabled")
	ErrPartnerEmailRequired = errors.New("partner email is required when notification is enabled")
)
