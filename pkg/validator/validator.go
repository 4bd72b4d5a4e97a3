package validator

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/feedbackportal/pkg/apperror"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterBindingValidations installs the review tags on gin's validator so
// request DTOs can use `binding:"course_code"` and `binding:"half_star"`.
func RegisterBindingValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return Register(v)
}

func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("course_code", func(fl validator.FieldLevel) bool {
		return IsCourseCode(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("half_star", func(fl validator.FieldLevel) bool {
		return IsHalfStar(fl.Field().Float())
	})
}

// BindingError converts a gin binding failure into an AppError whose kind
// follows the first failing review tag.
func BindingError(err error) error {
	sentinel := apperror.ErrBadRequest

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		switch validationErrors[0].Tag() {
		case "course_code":
			sentinel = apperror.ErrInvalidSubjectCode
		case "half_star":
			sentinel = apperror.ErrInvalidRating
		}
	}

	return apperror.Wrap(sentinel, FormatValidationError(err))
}

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			message := getFieldErrorMessage(fieldError)
			messages = append(messages, message)
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Type().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "course_code":
		return fmt.Sprintf("%s must be 3 uppercase letters followed by 4 digits, e.g. INF1343", field)
	case "half_star":
		return fmt.Sprintf("%s must be between 1 and 5 in steps of 0.5", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Username":    "Username",
		"Email":       "Email",
		"Password":    "Password",
		"Code":        "Subject code",
		"Name":        "Name",
		"Title":       "Title",
		"Body":        "Body",
		"Stars":       "Stars",
		"SubjectCode": "Subject",
		"TeacherID":   "Teacher",
		"Kind":        "Vote kind",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
