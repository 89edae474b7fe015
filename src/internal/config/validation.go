package config

import (
	"fmt"
	"net/url"
	"path"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	repositoryRegexp = regexp.MustCompile(`^[A-Za-z0-9_.-]+/[A-Za-z0-9_.-]+$`)
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	case "url":
		return "must be a valid URL"
	case "cidr":
		return "must be a valid CIDR (network/prefix-length)"
	case "timezone":
		return "must be a valid IANA time zone (e.g. Asia/Shanghai)"
	case "filename":
		return "must be a plain file name without directories"
	case "proxy_url":
		return "must be a socks5:// or socks5h:// URL with host and port"
	case "repo_path":
		return "must be a relative path inside the repository"
	case "repository":
		return "must be in owner/name form"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // Optional item the error refers to (e.g. "url[1]")
	FieldPath string // Dot-notation field path (e.g. "publish.timezone")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
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

var validate *validator.Validate

func init() {
	validate = validator.New()

	if err := validate.RegisterValidation("filename", validateFilename); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("proxy_url", validateProxyURL); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("repo_path", validateRepoPath); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("repository", validateRepository); err != nil {
		panic(err)
	}

	// Report field names as they appear in the TOML file
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"toml", "env"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
}

// Custom validator: bare file name
func validateFilename(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	return name != "" && name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
}

// Custom validator: optional SOCKS5 proxy URL
func validateProxyURL(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	u, err := url.Parse(value)
	if err != nil {
		return false
	}
	return (u.Scheme == "socks5" || u.Scheme == "socks5h") && u.Hostname() != "" && u.Port() != ""
}

// Custom validator: path inside a repository
func validateRepoPath(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" || strings.HasPrefix(value, "/") || strings.HasSuffix(value, "/") {
		return false
	}
	cleaned := path.Clean(value)
	return cleaned == value && cleaned != ".." && !strings.HasPrefix(cleaned, "../")
}

// Custom validator: owner/name repository identifier
func validateRepository(fl validator.FieldLevel) bool {
	return repositoryRegexp.MatchString(fl.Field().String())
}
