package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

// ErrInvalidValue is returned when validate rejects the value, so the exit code is non-zero
var ErrInvalidValue = errors.New("value rejected")

func newValidateCmd() *cobra.Command {
	var kind, value string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a single value against a field rule",
		Long: `Check a single value against a field rule without registering anything.

Kinds: firstName, lastName, email, password, dateOfBirth (or dob),
gender, freeTextNote (or note).`,
		Example: `  registrar validate --kind email --value dana@huji.ac.il
  registrar validate --kind dob --value 2010-01-01`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.Validate(kind, value)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			if !result.Valid {
				return ErrInvalidValue
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "Field kind (required)")
	cmd.Flags().StringVar(&value, "value", "", "Value to check")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}
