package discovery

import "github.com/go-playground/validator/v10"

// Validate checks opts against its struct tags, surfacing an invalid
// Duration/MaxResponses/NameTimeout before an inquiry is even attempted.
func (o InquiryOptions) Validate() error {
	return validator.New().Struct(o)
}
