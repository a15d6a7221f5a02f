package client

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/valetkey/internal/client/models"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// check runs struct-tag validation on a request body before it is sent.
func check(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return validationError(fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
	}
	return validationError(err.Error())
}

func requireID(what string, id models.ID) error {
	if id.IsZero() {
		return validationError(what + " is required")
	}
	return nil
}

func requireText(what, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", validationError(what + " is required")
	}
	return s, nil
}

type pageRequest struct {
	Page int `validate:"min=0"`
	Size int `validate:"min=1,max=1000"`
}
