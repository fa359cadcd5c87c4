package domain

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Vovarama1992/edushare/internal/models"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/unicode/norm"
)

const (
	maxInputLen = 2000
	maxURLLen   = 500
)

var AllowedURLDomains = []string{
	"youtube.com",
	"youtu.be",
	"drive.google.com",
	"docs.google.com",
	"dropbox.com",
	"mega.nz",
	"mediafire.com",
	"onedrive.live.com",
	"1drv.ms",
	"github.com",
	"githubusercontent.com",
	"notion.so",
	"notion.site",
	"canva.com",
	"slideshare.net",
	"scribd.com",
	"archive.org",
	"zoom.us",
	"meet.google.com",
	"teams.microsoft.com",
}

var (
	tagRe     = regexp.MustCompile(`<[^>]*>`)
	jsProtoRe = regexp.MustCompile(`(?i)javascript:`)
	handlerRe = regexp.MustCompile(`(?i)on\w+\s*=`)
	timeRe    = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):[0-5][0-9](:[0-5][0-9])?$`)
	phoneRe   = regexp.MustCompile(`^(?:\+94|0)?7[0-9]{8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json names, not Go field names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("resource_url", func(fl validator.FieldLevel) bool {
		return IsAllowedResourceURL(fl.Field().String())
	})
	_ = v.RegisterValidation("lk_phone", func(fl validator.FieldLevel) bool {
		return IsValidPhoneNumber(fl.Field().String())
	})
	return v
}

// SanitizeInput strips markup and script vectors from free text.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	s = tagRe.ReplaceAllString(s, "")
	s = jsProtoRe.ReplaceAllString(s, "")
	s = handlerRe.ReplaceAllString(s, "")
	s = norm.NFC.String(s)
	return truncateRunes(s, maxInputLen)
}

func SanitizeURL(s string) string {
	return truncateRunes(strings.TrimSpace(s), maxURLLen)
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

func IsAllowedResourceURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range AllowedURLDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func IsValidTimeFormat(s string) bool {
	return timeRe.MatchString(s)
}

// IsValidPhoneNumber accepts Sri Lankan mobile numbers, spaces ignored.
func IsValidPhoneNumber(s string) bool {
	return phoneRe.MatchString(strings.ReplaceAll(s, " ", ""))
}

// ValidateResource checks a submission. Schedule fields are only checked for
// live sessions; now decides what "past" means for them.
func ValidateResource(in *models.ResourceInput, now time.Time) error {
	if err := validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	if in.ResourceType != models.ResourceSession || in.SessionType != models.SessionLive {
		return nil
	}

	var issues []FieldIssue
	if in.SessionDate != nil && *in.SessionDate != "" {
		d, err := time.ParseInLocation("2006-01-02", *in.SessionDate, now.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		switch {
		case err != nil:
			issues = append(issues, FieldIssue{Field: "sessionDate", Message: "sessionDate must be a date in YYYY-MM-DD format"})
		case d.Before(today):
			issues = append(issues, FieldIssue{Field: "sessionDate", Message: "Live session date must be in the future"})
		}
	}
	if in.StartTime != nil && *in.StartTime != "" && !IsValidTimeFormat(*in.StartTime) {
		issues = append(issues, FieldIssue{Field: "startTime", Message: "Invalid start time format"})
	}
	if in.EndTime != nil && *in.EndTime != "" && !IsValidTimeFormat(*in.EndTime) {
		issues = append(issues, FieldIssue{Field: "endTime", Message: "Invalid end time format"})
	}
	if len(issues) > 0 {
		return &ValidationError{Message: "Validation failed", Issues: issues}
	}
	return nil
}

// SanitizeResource rewrites free-text fields in place. Call after ValidateResource.
func SanitizeResource(in *models.ResourceInput) {
	in.Title = SanitizeInput(in.Title)
	in.Description = SanitizeInput(in.Description)
	in.Subject = SanitizeInput(in.Subject)
	in.URL = SanitizeURL(in.URL)
}

func ValidateDonation(in *models.DonationInput) error {
	if err := validate.Struct(in); err != nil {
		return toValidationError(err)
	}
	return nil
}

func SanitizeDonation(in *models.DonationInput) {
	in.Name = SanitizeInput(in.Name)
	in.Address = SanitizeInput(in.Address)
	in.District = SanitizeInput(in.District)
	in.Grade = SanitizeInput(in.Grade)
	in.School = SanitizeInput(in.School)
	in.PhoneNumber = strings.ReplaceAll(strings.TrimSpace(in.PhoneNumber), " ", "")
	in.Description = SanitizeInput(in.Description)
}

func toValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	out := &ValidationError{Message: "Validation failed"}
	for _, fe := range verrs {
		out.Issues = append(out.Issues, FieldIssue{
			Field:   fe.Field(),
			Message: issueMessage(fe),
		})
	}
	return out
}

func issueMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fe.Field() + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "At least " + fe.Param() + " " + fe.Field() + " is required"
		}
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at most %s items", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be less than %s characters", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), strings.ReplaceAll(fe.Param(), "'", ""))
	case "url":
		return "Invalid URL format"
	case "resource_url":
		return "URL must be from an allowed domain (YouTube, Google Drive, Dropbox, etc.)"
	case "lk_phone":
		return "Please enter a valid Sri Lankan phone number"
	}
	return fe.Field() + " is invalid"
}
