package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/nguyentantai21042004/protocol-flow/internal/domain"
)

// SubmitRequest describes a meeting to process. It is decoded from JSON by
// the API and from YAML by the inbox watcher.
type SubmitRequest struct {
	Topic        string             `json:"topic" yaml:"topic" validate:"required,max=200"`
	Date         time.Time          `json:"date" yaml:"date" validate:"required"`
	AudioPath    string             `json:"audio_path" yaml:"audio" validate:"required"`
	Participants []ParticipantInput `json:"participants" yaml:"participants" validate:"required,min=1,unique=Name,dive"`
}

// dateLayouts are the accepted JSON spellings of the meeting date. A plain
// calendar date matches what the YAML manifest accepts.
var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func (r *SubmitRequest) UnmarshalJSON(data []byte) error {
	type plain SubmitRequest
	aux := struct {
		*plain
		Date string `json:"date"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Date = time.Time{}
	if aux.Date == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, aux.Date); err == nil {
			r.Date = d
			return nil
		}
	}
	return fmt.Errorf("date %q: want YYYY-MM-DD or RFC 3339", aux.Date)
}

// ParticipantInput is one attendee of a submitted meeting.
type ParticipantInput struct {
	Name        string `json:"name" yaml:"name" validate:"required,max=100"`
	VoiceSample string `json:"voice_sample,omitempty" yaml:"voice_sample"`
	Email       string `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Tag         string `json:"tag,omitempty" yaml:"tag"`
}

var (
	validate *validator.Validate
	once     sync.Once
)

func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// Validate checks the request and returns a domain.KindInvalidInput error
// listing every offending field.
func (r SubmitRequest) Validate() error {
	err := getValidator().Struct(r)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.InvalidInput("validate submission", err)
	}

	messages := make([]string, 0, len(verrs))
	for _, e := range verrs {
		messages = append(messages, fieldPath(e)+": "+formatValidationError(e))
	}
	return domain.InvalidInput("validate submission", errors.New(strings.Join(messages, "; ")))
}

// fieldPath drops the struct name from the namespace,
// "SubmitRequest.participants[0].name" -> "participants[0].name".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must have at least " + e.Param() + " entries"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "unique":
		return "must not repeat " + strings.ToLower(e.Param())
	default:
		return "is invalid"
	}
}
