package validator

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"anoa.com/feedbackportal/pkg/apperror"
)

const (
	MinStars = 1.0
	MaxStars = 5.0
)

var courseCodePattern = regexp.MustCompile(`^[A-Z]{3}\d{4}$`)

func IsCourseCode(code string) bool {
	return courseCodePattern.MatchString(code)
}

// IsHalfStar reports whether v lies in [1,5] and is a whole or half number.
func IsHalfStar(v float64) bool {
	if math.IsNaN(v) || v < MinStars || v > MaxStars {
		return false
	}
	return math.Mod(v*2, 1) == 0
}

// ValidateStars accepts an absent rating.
func ValidateStars(stars *float64) error {
	if stars == nil {
		return nil
	}
	if !IsHalfStar(*stars) {
		return apperror.Wrap(apperror.ErrInvalidRating,
			fmt.Sprintf("rating %v is invalid: must be between 1 and 5 in steps of 0.5", *stars))
	}
	return nil
}

func ValidateTarget(subjectCode *string, teacherID *uint) error {
	hasSubject := subjectCode != nil && strings.TrimSpace(*subjectCode) != ""
	hasTeacher := teacherID != nil && *teacherID != 0
	if !hasSubject && !hasTeacher {
		return apperror.Wrap(apperror.ErrMissingTarget, apperror.ErrMissingTarget.Error())
	}
	return nil
}

func ValidateSubjectCode(code string) error {
	if !IsCourseCode(code) {
		return apperror.Wrap(apperror.ErrInvalidSubjectCode,
			fmt.Sprintf("subject code %q is invalid: must be 3 uppercase letters followed by 4 digits, e.g. INF1343", code))
	}
	return nil
}

func ValidateMessageBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return apperror.Wrap(apperror.ErrEmptyMessageBody, apperror.ErrEmptyMessageBody.Error())
	}
	return nil
}
