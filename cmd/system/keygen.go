package system

import (
	"fmt"

	"github.com/spf13/cobra"

	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
)

// NewKeygenCommand prints fresh PASETO key material in config form.
func NewKeygenCommand() *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate PASETO keys for authentication.paseto",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := pasetotoken.GenerateKeyStrings(pasetotoken.Mode(mode))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "authentication:")
			fmt.Fprintln(out, "  paseto:")
			fmt.Fprintf(out, "    mode: %s\n", ks.Mode)
			if ks.SymmetricHex != "" {
				fmt.Fprintf(out, "    local_key_hex: %s\n", ks.SymmetricHex)
			}
			if ks.SecretHex != "" {
				fmt.Fprintf(out, "    secret_key_hex: %s\n", ks.SecretHex)
				fmt.Fprintf(out, "    public_key_hex: %s\n", ks.PublicHex)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(pasetotoken.ModeLocal), "key mode: local or public")

	return cmd
}
