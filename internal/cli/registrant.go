package cli

import (
	"github.com/spf13/cobra"
)

func newRegistrantCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "registrant",
		Aliases: []string{"registrants"},
		Short:   "Registered user commands",
	}

	cmd.AddCommand(newRegistrantListCmd())
	cmd.AddCommand(newRegistrantGetCmd())
	cmd.AddCommand(newRegistrantAddCmd())

	return cmd
}

func newRegistrantListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered users in last-name order",
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.ListRegistrants()
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRegistrantGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <email>",
		Short: "Show the registered user with this email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client.GetRegistrant(args[0])
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}
}

func newRegistrantAddCmd() *cobra.Command {
	var in RegistrationFields

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a user in one call",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}

			result, err := client.Register(in)
			if err != nil {
				return err
			}

			output(cmd).Print(result)
			return nil
		},
	}

	addIdentityFlags(cmd, &in.IdentityFields)
	addCredentialsFlags(cmd, &in.CredentialsFields)

	return cmd
}

func addIdentityFlags(cmd *cobra.Command, in *IdentityFields) {
	cmd.Flags().StringVar(&in.FirstName, "first-name", "", "First name")
	cmd.Flags().StringVar(&in.LastName, "last-name", "", "Last name")
	cmd.Flags().StringVar(&in.Email, "email", "", "Email address")
}

func addCredentialsFlags(cmd *cobra.Command, in *CredentialsFields) {
	cmd.Flags().StringVar(&in.Password, "password", "", "Password")
	cmd.Flags().StringVar(&in.ConfirmPassword, "confirm-password", "", "Password confirmation (defaults to --password)")
	cmd.Flags().StringVar(&in.DateOfBirth, "dob", "", "Date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "Gender: male, female, unspecified")
	cmd.Flags().StringVar(&in.Note, "note", "", "Free-text comments")
}
