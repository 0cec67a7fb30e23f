package prompt

import (
	"strings"

	"github.com/hpungsan/promptbase/internal/errors"
)

// ValidPayload is a create/update submission that passed Validate.
// Fields keep their original content; trimming is only used for the check.
type ValidPayload struct {
	Title string
	Body  string
}

// Validate rejects a submission whose title or body is blank after trimming.
func Validate(title, body string) (ValidPayload, error) {
	var missing []string
	if strings.TrimSpace(title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return ValidPayload{}, errors.NewValidation(missing)
	}
	return ValidPayload{Title: title, Body: body}, nil
}
