// Package respond writes the uniform JSON envelope used by every endpoint:
// {status, message|code, data}.
package respond

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"mango-sync-backend/internal/apperr"
)

// DebugKey is the gin context key that enables error details in responses.
const DebugKey = "respond.debug"

// Envelope is the response body shape.
type Envelope struct {
	Status  string            `json:"status"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Debug   string            `json:"debug,omitempty"`
}

// Success writes a success envelope.
func Success(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Envelope{Status: "success", Message: message, Data: data})
}

// Error aborts the request with the envelope for err. 5xx errors are
// reported to Sentry and their text is hidden unless debug is on.
func Error(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	env := Envelope{
		Status:  "error",
		Code:    apperr.Code(err),
		Message: apperr.Message(err),
	}
	if status >= http.StatusInternalServerError {
		capture(c, err)
	}
	if c.GetBool(DebugKey) {
		env.Debug = err.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, env)
}

// BindError aborts with a 422 describing which request fields failed validation.
func BindError(c *gin.Context, err error) {
	env := Envelope{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: "Validation failed",
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		env.Errors = make(map[string]string, len(verrs))
		for _, fe := range verrs {
			env.Errors[fe.Field()] = describe(fe)
		}
	} else {
		env.Errors = map[string]string{"body": "malformed request body"}
	}
	if c.GetBool(DebugKey) {
		env.Debug = err.Error()
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, env)
}

// Invalid aborts with a 422 for a single field.
func Invalid(c *gin.Context, field, message string) {
	_ = c.Error(fmt.Errorf("%s: %s", field, message))
	c.AbortWithStatusJSON(http.StatusUnprocessableEntity, Envelope{
		Status:  "error",
		Code:    "VALIDATION_ERROR",
		Message: "Validation failed",
		Errors:  map[string]string{field: message},
	})
}

func capture(c *gin.Context, err error) {
	hub := sentry.GetHubFromContext(c.Request.Context())
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	hub.CaptureException(err)
}

var registerOnce sync.Once

// UseJSONFieldNames makes gin's validator report fields by their json name.
func UseJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				name, _, _ = strings.Cut(f.Tag.Get("form"), ",")
			}
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return "may not be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "datetime":
		return "must be a date in the format " + fe.Param()
	default:
		return "is invalid"
	}
}
