package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tomaslau/focusonly/internal/model"
)

var structValidator = validator.New()

// Settings checks user settings before they are persisted.
// An empty API key is allowed; the orchestrator reports it at analysis time.
func Settings(s model.Settings) error {
	return describe("invalid settings", structValidator.Struct(s))
}

// Struct checks the validate tags of any struct, such as a decoded request body
func Struct(v any) error {
	return describe("invalid request", structValidator.Struct(v))
}

func describe(prefix string, err error) error {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("%s: %s", prefix, strings.Join(msgs, ", "))
}
