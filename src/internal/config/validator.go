package config

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	sections := []struct {
		name  string
		value interface{}
	}{
		{"general", &c.General},
		{"source", &c.Source},
		{"filter", &c.Filter},
		{"publish", &c.Publish},
		{"metrics", &c.Metrics},
	}
	for _, section := range sections {
		if err := validate.Struct(section.value); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, section.name, "")...)
		}
	}

	validationErrors = append(validationErrors, c.validateGeneral()...)
	validationErrors = append(validationErrors, c.validateSources()...)

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateGeneral() ValidationErrors {
	var validationErrors ValidationErrors

	if c.General.OutputFile != "" && c.General.OutputFile == c.General.ArchiveName {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general.output_file",
			Message:   fmt.Sprintf("must differ from archive_name (%s)", c.General.ArchiveName),
		})
	}

	return validationErrors
}

func (c *Config) validateSources() ValidationErrors {
	var validationErrors ValidationErrors
	seen := make(map[string]bool)

	for i, url := range c.Source.URLs {
		if seen[url] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  fmt.Sprintf("url[%d]", i),
				FieldPath: "source.urls",
				Message:   fmt.Sprintf("duplicate url: %s", url),
			})
		}
		seen[url] = true
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + e.Field()
				} else {
					fieldPath = e.Field()
				}
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  itemName,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
