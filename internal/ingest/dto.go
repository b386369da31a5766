package ingest

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/google/uuid"
)

// ComplaintRequest is the body of POST /complaints.
type ComplaintRequest struct {
	CustomerName  string `json:"CustomerName" binding:"required,notblank"`
	CustomerEmail string `json:"CustomerEmail" binding:"required,email"`
	ComplaintType string `json:"ComplaintType" binding:"required,notblank"`
	Description   string `json:"Description" binding:"required,notblank,min=10,max=1000"`
}

// Complaint is the message published for downstream processing.
type Complaint struct {
	ComplaintID   uuid.UUID `json:"ComplaintId"`
	CustomerName  string    `json:"CustomerName"`
	CustomerEmail string    `json:"CustomerEmail"`
	ComplaintType string    `json:"ComplaintType"`
	Description   string    `json:"Description"`
	SubmittedAt   time.Time `json:"SubmittedAt"`
}

// ToComplaint assigns a new complaint id and stamps the submission time in UTC.
func (r *ComplaintRequest) ToComplaint(now time.Time) Complaint {
	return Complaint{
		ComplaintID:   uuid.New(),
		CustomerName:  strings.TrimSpace(r.CustomerName),
		CustomerEmail: strings.TrimSpace(r.CustomerEmail),
		ComplaintType: strings.TrimSpace(r.ComplaintType),
		Description:   r.Description,
		SubmittedAt:   now.UTC(),
	}
}

// AcceptedResponse is the 202 body.
type AcceptedResponse struct {
	ComplaintID string `json:"complaint_id"`
	Status      string `json:"status"`
}

// ErrorResponse is the body of every 4xx/5xx answer. Fields is set for validation failures only.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding rules on gin's validator.
// It panics when a rule cannot be registered.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("ingest: gin validator engine is not go-playground/validator")
		}
		if err := registerValidators(v); err != nil {
			panic(err)
		}
	})
}

func registerValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		return fmt.Errorf("register notblank: %w", err)
	}
	return nil
}

// fieldErrors renders validator failures as field -> message.
func fieldErrors(err error) (map[string]string, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return fields, true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
