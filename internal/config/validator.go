package config

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var objectNameRegexp = regexp.MustCompile(`^[a-z][a-z0-9_-]*$`)

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("object_name", validateObjectName); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("proxy_url", validateProxyURL); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("host_port", validateHostPort); err != nil {
		panic(err)
	}
}

// ValidationError represents a single validation error with context.
type ValidationError struct {
	ItemName  string // For sources/rules: the name of the item
	FieldPath string // Dot-notation field path (e.g. "general.batch_size")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

// ValidateConfig validates the entire configuration and returns all validation errors.
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	if c.API != nil {
		if err := validate.Struct(c.API); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "api", "")...)
		}
	}

	validationErrors = append(validationErrors, c.validateSources()...)
	validationErrors = append(validationErrors, c.validateRules()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateSources() ValidationErrors {
	var validationErrors ValidationErrors

	seenNames := make(map[string]bool)
	for i, src := range c.Sources {
		itemName := src.Name
		if itemName == "" {
			itemName = fmt.Sprintf("source[%d]", i)
		}

		if err := validate.Struct(src); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("source.%d", i), itemName)...)
		}

		if src.Name != "" && seenNames[src.Name] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "name",
				Message:   fmt.Sprintf("duplicate source name: %s", src.Name),
			})
		}
		seenNames[src.Name] = true

		if src.ResolveHostnames && (c.General == nil || c.General.Resolver == "") {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: "resolve_hostnames",
				Message:   "requires general.resolver to be set",
			})
		}
	}

	return validationErrors
}

func (c *Config) validateRules() ValidationErrors {
	var validationErrors ValidationErrors

	for i, rule := range c.Rules {
		if err := validate.Struct(rule); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, fmt.Sprintf("rule.%d", i), "")...)
		}
	}

	return validationErrors
}

// convertValidatorErrors maps go-playground/validator errors to ValidationErrors.
func convertValidatorErrors(err error, pathPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	fieldErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{
			ItemName:  itemName,
			FieldPath: pathPrefix,
			Message:   err.Error(),
		}}
	}

	for _, e := range fieldErrors {
		validationErrors = append(validationErrors, ValidationError{
			ItemName:  itemName,
			FieldPath: pathPrefix + "." + strings.ToLower(e.Field()),
			Message:   getValidationMessage(e),
		})
	}

	return validationErrors
}

// getValidationMessage returns a human-readable message for a validation error.
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "field is required"
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", e.Param())
	case "url":
		return "must be a valid URL"
	case "object_name":
		return "must start with a letter and consist only of [a-z0-9_-]"
	case "proxy_url":
		return "must be a http://, https:// or socks5:// URL"
	case "host_port":
		return "must be in format 'host' or 'host:port'"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

func validateObjectName(fl validator.FieldLevel) bool {
	return objectNameRegexp.MatchString(fl.Field().String())
}

func validateProxyURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https", "socks5":
		return u.Host != ""
	default:
		return false
	}
}

func validateHostPort(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return false
	}
	if host, port, err := net.SplitHostPort(value); err == nil {
		return host != "" && port != ""
	}
	// Bare host (no port) is accepted; the consumer appends the default port.
	return !strings.Contains(value, ":") || net.ParseIP(value) != nil
}
