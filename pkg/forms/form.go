// Package forms models the site's lead-capture forms on the client side:
// field validation that only surfaces after a field is touched, and the
// idle -> submitting -> success/error lifecycle around one submission.
package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"multiball-waitlist/pkg/models"
)

// Status is where a form is in its submission lifecycle.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// FieldState is the validation state of a required field.
type FieldState int

const (
	Untouched FieldState = iota
	TouchedValid
	TouchedInvalid
)

// Field names.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldRole       = "role"
	FieldBackground = "background"
	FieldWhy        = "why"
)

const (
	msgNameRequired  = "Name is required"
	msgEmailRequired = "Email is required"
	msgEmailInvalid  = "Please enter a valid email"
	msgNetworkError  = "Network error. Please try again."
	msgFallbackError = "Something went wrong."
)

var (
	// ErrInvalid is returned by Submit when a required field fails validation.
	ErrInvalid = errors.New("form has invalid fields")
	// ErrInFlight is returned by Submit while a submission is running.
	ErrInFlight = errors.New("submission already in progress")
	// ErrCompleted is returned by Submit after a successful submission.
	ErrCompleted = errors.New("form already submitted")
	// ErrDisabled is returned by Set while the form is not editable.
	ErrDisabled = errors.New("form is disabled")
	// ErrUnknownField is returned by Set for a field the form does not have.
	ErrUnknownField = errors.New("unknown field")
	// ErrSubmitFailed wraps a rejected or failed submission.
	ErrSubmitFailed = errors.New("submission failed")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("siteemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// ValidEmail applies the browser-side email pattern.
func ValidEmail(email string) bool {
	return validate.Var(email, "siteemail") == nil
}

// Kind describes one of the site's forms.
type Kind struct {
	Path           string
	Required       []string
	Fields         []string
	SuccessMessage string
}

var (
	// Signup is the landing page's email-only form.
	Signup = Kind{
		Path:           "/api/subscribe",
		Required:       []string{FieldEmail},
		Fields:         []string{FieldEmail},
		SuccessMessage: "You're on the list!",
	}
	// Join is the camp crew interest form.
	Join = Kind{
		Path:           "/api/coach-interest",
		Required:       []string{FieldName, FieldEmail},
		Fields:         []string{FieldName, FieldEmail, FieldRole, FieldBackground, FieldWhy},
		SuccessMessage: "Thanks! We'll be in touch.",
	}
)

func (k Kind) has(field string) bool {
	for _, f := range k.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// Submitter sends a form body to path and decodes the JSON reply.
type Submitter interface {
	Submit(ctx context.Context, path string, body interface{}) (int, Reply, error)
}

// Reply is the JSON body the API answers with.
type Reply struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Form is one mounted instance of a form. It is safe for concurrent use;
// a second Submit while one is in flight is rejected.
type Form struct {
	kind      Kind
	submitter Submitter

	mu      sync.Mutex
	values  map[string]string
	touched map[string]bool
	status  Status
	message string
}

// New creates an idle form.
func New(kind Kind, submitter Submitter) *Form {
	return &Form{
		kind:      kind,
		submitter: submitter,
		values:    make(map[string]string),
		touched:   make(map[string]bool),
		status:    StatusIdle,
	}
}

// Set changes a field value. Fields are locked while submitting and after success.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.kind.has(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if f.disabledLocked() {
		return ErrDisabled
	}
	f.values[field] = value
	return nil
}

// Value returns the current value of a field.
func (f *Form) Value(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[field]
}

// Touch marks a field as interacted with, so its error text can show.
func (f *Form) Touch(field string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.touched[field] = true
}

// FieldError returns the error text for a touched, invalid field.
func (f *Form) FieldError(field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.touched[field] {
		return ""
	}
	return f.validateLocked(field)
}

// FieldState reports the validation state of a field.
func (f *Form) FieldState(field string) FieldState {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case !f.touched[field]:
		return Untouched
	case f.validateLocked(field) != "":
		return TouchedInvalid
	default:
		return TouchedValid
	}
}

// Status returns the lifecycle state.
func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Message returns the success or error text shown to the user.
func (f *Form) Message() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Disabled reports whether the inputs are locked.
func (f *Form) Disabled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.disabledLocked()
}

// Submit validates the form and, if every required field passes, posts it.
// Validation failures make no network call. On success the fields are reset
// and the form stays in StatusSuccess; on failure it stays editable.
func (f *Form) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.status {
	case StatusSubmitting:
		f.mu.Unlock()
		return ErrInFlight
	case StatusSuccess:
		f.mu.Unlock()
		return ErrCompleted
	}

	valid := true
	for _, field := range f.kind.Required {
		f.touched[field] = true
		if f.validateLocked(field) != "" {
			valid = false
		}
	}
	if !valid {
		f.mu.Unlock()
		return ErrInvalid
	}

	f.status = StatusSubmitting
	body := f.bodyLocked()
	f.mu.Unlock()

	code, reply, err := f.submitter.Submit(ctx, f.kind.Path, body)

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case err != nil:
		f.status = StatusError
		f.message = msgNetworkError
		return errors.Join(ErrSubmitFailed, err)
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		f.status = StatusSuccess
		f.message = firstNonEmpty(reply.Message, f.kind.SuccessMessage)
		f.values = make(map[string]string)
		return nil
	default:
		f.status = StatusError
		f.message = firstNonEmpty(reply.Error, msgFallbackError)
		return ErrSubmitFailed
	}
}

func (f *Form) disabledLocked() bool {
	return f.status == StatusSubmitting || f.status == StatusSuccess
}

func (f *Form) validateLocked(field string) string {
	value := f.values[field]
	switch field {
	case FieldName:
		if validate.Var(value, "notblank") != nil {
			return msgNameRequired
		}
	case FieldEmail:
		if validate.Var(value, "notblank") != nil {
			return msgEmailRequired
		}
		if validate.Var(value, "siteemail") != nil {
			return msgEmailInvalid
		}
	}
	return ""
}

func (f *Form) bodyLocked() interface{} {
	if f.kind.Path == Signup.Path {
		return models.SignupRequest{Email: f.values[FieldEmail]}
	}
	return models.InterestRequest{
		Name:       f.values[FieldName],
		Email:      f.values[FieldEmail],
		Role:       f.values[FieldRole],
		Background: f.values[FieldBackground],
		Why:        f.values[FieldWhy],
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
