package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

// ErrNoSession is returned by session commands when no session has been started
var ErrNoSession = errors.New("no registration session; run 'registrar session start' first")

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Step-by-step registration",
		Long: `Register a user in two steps, the same way the web form does.

The session ID is saved to the session file between commands:

  registrar session start
  registrar session identity --first-name Dana --last-name Levi --email dana@huji.ac.il
  registrar session save --password Secret123 --dob 1998-07-21 --gender female`,
	}

	cmd.AddCommand(newSessionStartCmd())
	cmd.AddCommand(newSessionShowCmd())
	cmd.AddCommand(newSessionIdentityCmd())
	cmd.AddCommand(newSessionBackCmd())
	cmd.AddCommand(newSessionSaveCmd())

	return cmd
}

func newSessionStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a new registration session",
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := client.StartSession()
			if err != nil {
				return err
			}

			if err := cfg.SaveSession(session.ID); err != nil {
				return fmt.Errorf("failed to save session: %w", err)
			}

			output(cmd).Print(session)
			return nil
		},
	}
}

func newSessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the current registration session",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := currentSession()
			if err != nil {
				return err
			}

			session, err := client.GetSession(id)
			if err != nil {
				return forgetIfExpired(err)
			}

			output(cmd).Print(session)
			return nil
		},
	}
}

func newSessionIdentityCmd() *cobra.Command {
	var in IdentityFields

	cmd := &cobra.Command{
		Use:   "identity",
		Short: "Submit first name, last name and email",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := currentSession()
			if err != nil {
				return err
			}

			session, err := client.SubmitIdentity(id, in)
			if err != nil {
				return forgetIfExpired(err)
			}

			output(cmd).Print(session)
			return nil
		},
	}

	addIdentityFlags(cmd, &in)

	return cmd
}

func newSessionBackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the identity step",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := currentSession()
			if err != nil {
				return err
			}

			session, err := client.GoBack(id)
			if err != nil {
				return forgetIfExpired(err)
			}

			output(cmd).Print(session)
			return nil
		},
	}
}

func newSessionSaveCmd() *cobra.Command {
	var in CredentialsFields

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Submit the credentials step and register",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := currentSession()
			if err != nil {
				return err
			}
			if in.ConfirmPassword == "" {
				in.ConfirmPassword = in.Password
			}

			result, err := client.SubmitCredentials(id, in)
			if err != nil {
				return forgetIfExpired(err)
			}

			output(cmd).Print(result)
			return nil
		},
	}

	addCredentialsFlags(cmd, &in)

	return cmd
}

func currentSession() (string, error) {
	id, err := cfg.LoadSession()
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", ErrNoSession
	}
	return id, nil
}

// forgetIfExpired clears the saved session when the server no longer knows it
func forgetIfExpired(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		_ = cfg.ClearSession()
	}
	return err
}
