// Package validation checks calculator inputs and command-line options.
package validation

import (
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %q",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateEnvironment checks the deployment environment discriminator.
func ValidateEnvironment(env string) error {
	switch env {
	case constants.EnvironmentDevelopment, constants.EnvironmentProduction, constants.EnvironmentTest:
		return nil
	}
	return fmt.Errorf("expected environment of %s, %s or %s, got %q",
		constants.EnvironmentDevelopment, constants.EnvironmentProduction, constants.EnvironmentTest, env)
}
