package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"loginpage/internal/models"
)

func respondMessage(c *gin.Context, status int, msg string) {
	c.JSON(status, models.MessageResponse{Message: msg})
}

// respondValidation answers a failed ShouldBindJSON with per-field errors.
func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.MessageResponse{
		Message: "Invalid request.",
		Errors:  validationErrors(err),
	})
}

func validationErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// malformed JSON or wrong field types
		out["body"] = err.Error()
		return out
	}
	for _, fe := range verrs {
		out[lowerFirst(fe.Field())] = describe(fe)
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "eqfield":
		return "must match " + strings.ToLower(fe.Param())
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToLower(r)) + s[n:]
}
