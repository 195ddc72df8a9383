package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/almaleek/wallet/internal/security"
)

func (d *Deps) newPasscodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passcode",
		Short: "Manage the local app-lock passcode",
	}

	set := &cobra.Command{
		Use:   "set",
		Short: "Set or replace the app passcode",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			enabled, err := d.Lock.Enabled(ctx)
			if err != nil {
				return err
			}
			if enabled {
				current, err := readSecret(cmd, "Current passcode: ")
				if err != nil {
					return err
				}
				if err := d.Lock.Verify(ctx, current); err != nil {
					return err
				}
			}
			next, err := readSecret(cmd, "New passcode (6 digits): ")
			if err != nil {
				return err
			}
			confirmCode, err := readSecret(cmd, "Confirm passcode: ")
			if err != nil {
				return err
			}
			if next != confirmCode {
				return errors.New("passcodes do not match")
			}
			if err := d.Lock.SetPasscode(ctx, next); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "App passcode set.")
			return nil
		},
	}

	off := &cobra.Command{
		Use:   "off",
		Short: "Remove the app passcode",
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := readSecret(cmd, "Current passcode: ")
			if err != nil {
				return err
			}
			if err := d.Lock.Disable(cmd.Context(), current); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "App passcode removed.")
			return nil
		},
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show app-lock settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			enabled, err := d.Lock.Enabled(ctx)
			if err != nil {
				return err
			}
			biometrics, err := d.Lock.BiometricsEnabled(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Passcode:   %s\n", onOff(enabled))
			fmt.Fprintf(cmd.OutOrStdout(), "Biometrics: %s\n", onOff(biometrics))
			return nil
		},
	}

	biometrics := &cobra.Command{
		Use:   "biometrics <on|off>",
		Short: "Toggle biometric unlock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var enable bool
			switch args[0] {
			case "on":
				enable = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			if err := d.Lock.SetBiometrics(cmd.Context(), enable); err != nil {
				if errors.Is(err, security.ErrNoPasscode) {
					return errors.New("set a passcode first with `wallet passcode set`")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Biometric unlock %s.\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(set, off, status, biometrics)
	return cmd
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
