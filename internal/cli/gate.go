package cli

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"

	"cashmonitor/internal/gate"
)

func (r *runner) pinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pin",
		Short: "Protect edits and deletions with a PIN",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether a PIN is set",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				set, err := r.app.PINs.IsSet(cmd.Context())
				if err != nil {
					return err
				}
				if set {
					printInfof(cmd.OutOrStdout(), "PIN ist gesetzt")
				} else {
					printInfof(cmd.OutOrStdout(), "Keine PIN gesetzt")
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "set [pin]",
			Short: "Set or change the PIN (4-6 digits)",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := r.requirePIN(ctx); err != nil {
					return err
				}
				pin := firstArg(args)
				if pin == "" {
					var err error
					if pin, err = r.opts.Prompter.PIN("Neue PIN"); err != nil {
						return err
					}
				}
				if err := r.app.PINs.Set(ctx, pin); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "PIN gespeichert")
				return nil
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Remove the PIN",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				if err := r.requirePIN(ctx); err != nil {
					return err
				}
				if err := r.app.PINs.Reset(ctx); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "PIN entfernt")
				return nil
			},
		},
	)
	return cmd
}

func (r *runner) verifier() (*gate.Verifier, error) {
	key := r.opts.LicenseKey
	if len(key) == 0 {
		key = gate.DefaultPublicKeyPEM
	}
	return gate.NewVerifier(key)
}

func (r *runner) licenseCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "license",
		Short: "Install or show the license",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "install <file>",
			Short: "Verify a license file and install it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := r.verifier()
				if err != nil {
					return err
				}
				lic, err := v.Install(args[0], r.app.Config.LicenseFile)
				if err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), gate.Info(lic))
				return nil
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the installed license",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := r.verifier()
				if err != nil {
					return err
				}
				lic, err := v.VerifyFile(r.app.Config.LicenseFile)
				switch {
				case errors.Is(err, fs.ErrNotExist):
					lic = nil
				case errors.Is(err, gate.ErrInvalidLicense):
					printError(cmd.OutOrStdout(), fmt.Sprintf("Lizenzdatei ungültig: %s", r.app.Config.LicenseFile))
					lic = nil
				case err != nil:
					return err
				}
				printInfof(cmd.OutOrStdout(), "%s", gate.Info(lic))
				return nil
			},
		},
	)
	return cmd
}
