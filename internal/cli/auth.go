package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/almaleek/wallet/internal/api"
	"github.com/almaleek/wallet/internal/session"
)

func (d *Deps) newLoginCmd() *cobra.Command {
	var email string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session locally",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if email == "" {
				if email, err = prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			password, err := readSecret(cmd, "Password: ")
			if err != nil {
				return err
			}

			sess, err := d.Auth.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			if sess.User != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Welcome back, %s\n", sess.User.Name)
				if !sess.User.HasPin {
					fmt.Fprintln(cmd.OutOrStdout(), "No transaction PIN set yet; run `wallet pin add` before purchasing.")
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	return cmd
}

func (d *Deps) newSignupCmd() *cobra.Command {
	var input api.SignUpInput
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a new wallet account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if input.Name == "" {
				if input.Name, err = prompt(cmd, "Full name: "); err != nil {
					return err
				}
			}
			if input.Email == "" {
				if input.Email, err = prompt(cmd, "Email: "); err != nil {
					return err
				}
			}
			if input.Phone == "" {
				if input.Phone, err = prompt(cmd, "Phone: "); err != nil {
					return err
				}
			}
			if input.Password, err = readSecret(cmd, "Password: "); err != nil {
				return err
			}
			confirm, err := readSecret(cmd, "Confirm password: ")
			if err != nil {
				return err
			}
			if confirm != input.Password {
				return errors.New("passwords do not match")
			}

			if err := d.Auth.SignUp(cmd.Context(), input); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Account created. Check your email for a verification code, then run `wallet verify`.")
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Name, "name", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "account email")
	cmd.Flags().StringVar(&input.Phone, "phone", "", "phone number")
	return cmd
}

func (d *Deps) newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := d.Auth.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
			return nil
		},
	}
}

func (d *Deps) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Aliases: []string{"whoami"},
		Short:   "Show the signed-in account and balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			user, err := d.Auth.CurrentUser(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:     %s\n", user.Name)
			fmt.Fprintf(out, "Email:    %s", user.Email)
			if !user.EmailVerified {
				fmt.Fprint(out, " (unverified)")
			}
			fmt.Fprintln(out)
			fmt.Fprintf(out, "Phone:    %s\n", user.Phone)
			fmt.Fprintf(out, "Balance:  %.2f NGN\n", user.Balance)
			if !user.HasPin {
				fmt.Fprintln(out, "No transaction PIN set; run `wallet pin add`.")
			}

			// Best effort: the token may be opaque to the client.
			if sess, err := d.Session.Session(cmd.Context()); err == nil {
				if claims, err := session.PeekClaims(sess.AccessToken); err == nil && !claims.Expiry.IsZero() {
					fmt.Fprintf(out, "Session:  expires %s", claims.Expiry.Local().Format("2006-01-02 15:04"))
					if claims.ExpiresWithin(5 * time.Minute) {
						fmt.Fprint(out, " (renewing soon)")
					}
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
}

func (d *Deps) newVerifyCmd() *cobra.Command {
	var resend bool
	cmd := &cobra.Command{
		Use:   "verify <email> [code]",
		Short: "Verify an email address with the emailed code",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			if resend {
				if err := d.Auth.ResendVerification(cmd.Context(), email); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Verification code resent.")
				return nil
			}
			if len(args) < 2 {
				return errors.New("verification code required (or pass --resend)")
			}
			if err := d.Auth.VerifyEmail(cmd.Context(), email, args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Email verified.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&resend, "resend", false, "resend the verification code")
	return cmd
}

func (d *Deps) newProfileCmd() *cobra.Command {
	var update api.ProfileUpdate
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update name or phone on the account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			if update.Name == "" && update.Phone == "" {
				return errors.New("nothing to update, pass --name or --phone")
			}
			if err := d.Auth.UpdateProfile(cmd.Context(), update); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Profile updated.")
			return nil
		},
	}
	cmd.Flags().StringVar(&update.Name, "name", "", "new display name")
	cmd.Flags().StringVar(&update.Phone, "phone", "", "new phone number")
	return cmd
}

func (d *Deps) newPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "password",
		Short: "Change or reset the account password",
	}

	change := &cobra.Command{
		Use:   "change",
		Short: "Change the password of the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			current, err := readSecret(cmd, "Current password: ")
			if err != nil {
				return err
			}
			next, err := readSecret(cmd, "New password: ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(cmd, "Confirm new password: ")
			if err != nil {
				return err
			}
			if next != confirm {
				return errors.New("passwords do not match")
			}
			if err := d.Auth.UpdatePassword(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed.")
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset <email>",
		Short: "Reset a forgotten password with an emailed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]
			if err := d.Auth.RequestPasswordReset(cmd.Context(), email); err != nil {
				return err
			}
			code, err := prompt(cmd, "Reset code from email: ")
			if err != nil {
				return err
			}
			if err := d.Auth.VerifyResetCode(cmd.Context(), email, code); err != nil {
				return err
			}
			next, err := readSecret(cmd, "New password: ")
			if err != nil {
				return err
			}
			if err := d.Auth.ResetPassword(cmd.Context(), email, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password reset. Sign in with `wallet login`.")
			return nil
		},
	}

	cmd.AddCommand(change, reset)
	return cmd
}

func (d *Deps) newPinCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Manage the 4-digit transaction PIN",
	}

	add := &cobra.Command{
		Use:   "add",
		Short: "Set the transaction PIN for the first time",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			pin, err := readSecret(cmd, "New transaction PIN: ")
			if err != nil {
				return err
			}
			confirm, err := readSecret(cmd, "Confirm PIN: ")
			if err != nil {
				return err
			}
			if pin != confirm {
				return errors.New("PINs do not match")
			}
			if err := d.Auth.AddPin(cmd.Context(), pin); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Transaction PIN set.")
			return nil
		},
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Change the transaction PIN",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := d.requireUser(cmd); err != nil {
				return err
			}
			current, err := readSecret(cmd, "Current PIN: ")
			if err != nil {
				return err
			}
			next, err := readSecret(cmd, "New PIN: ")
			if err != nil {
				return err
			}
			if err := d.Auth.UpdatePin(cmd.Context(), current, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Transaction PIN updated.")
			return nil
		},
	}

	cmd.AddCommand(add, update)
	return cmd
}
