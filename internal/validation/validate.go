package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/habiliai/edudash/errors"
)

var validate = validator.New()

// Struct validates the `validate` tags of a request and reports every failed
// field as ErrInvalidParams.
func Struct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errors.Wrapf(errors.ErrInvalidParams, "%v", err)
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field()+":"+fe.Tag())
	}
	return errors.Wrapf(errors.ErrInvalidParams, "invalid fields [%s]", strings.Join(fields, ", "))
}
