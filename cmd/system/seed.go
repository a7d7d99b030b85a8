package system

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/serviceflow_backend/internal/app"
	"github.com/Alijeyrad/serviceflow_backend/pkg/authorize"
)

// NewSeedCommand writes the default role policies and, optionally, grants a
// business role to one user.
func NewSeedCommand() *cobra.Command {
	var (
		userID     string
		businessID string
		role       string
		owner      string
		superadmin bool
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed RBAC policies and assign roles",
		Example: `  serviceflow system seed
  serviceflow system seed --user 7d3c... --owner 7d3c...
  serviceflow system seed --user 7d3c... --business 7d3c... --role role:business:staff
  serviceflow system seed --user 7d3c... --superadmin`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			auth, cleanup, err := app.NewAuthorization(cfg)
			if err != nil {
				return fmt.Errorf("failed to create authorization: %w", err)
			}
			defer cleanup(context.Background())

			ctx := cmd.Context()
			if err := authorize.SeedDefaultPolicies(ctx, auth); err != nil {
				return fmt.Errorf("failed to seed policies: %w", err)
			}
			fmt.Println("Default policies seeded.")

			if userID == "" {
				return nil
			}
			if _, err := uuid.Parse(userID); err != nil {
				return fmt.Errorf("invalid --user: %w", err)
			}

			if superadmin {
				if err := authorize.AssignSuperAdmin(ctx, auth, userID); err != nil {
					return fmt.Errorf("failed to assign superadmin: %w", err)
				}
				fmt.Printf("User %s is now superadmin.\n", userID)
				return nil
			}

			if owner != "" {
				if _, err := uuid.Parse(owner); err != nil {
					return fmt.Errorf("invalid --owner: %w", err)
				}
				if err := authorize.AssignBusinessOwnerRole(ctx, auth, userID, owner); err != nil {
					return fmt.Errorf("failed to assign owner: %w", err)
				}
				fmt.Printf("User %s now owns business %s.\n", userID, owner)
				return nil
			}

			if businessID == "" {
				businessID = userID
			}
			if _, err := uuid.Parse(businessID); err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}
			if err := authorize.AssignBusinessRole(ctx, auth, userID, businessID, authorize.Role(role)); err != nil {
				return fmt.Errorf("failed to assign role: %w", err)
			}
			fmt.Printf("Assigned %s to %s in business %s.\n", role, userID, businessID)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id to grant a role to")
	cmd.Flags().StringVar(&businessID, "business", "", "business id (defaults to the user id)")
	cmd.Flags().StringVar(&role, "role", string(authorize.RoleBusinessOwner), "business role to assign")
	cmd.Flags().StringVar(&owner, "owner", "", "business id to make the user owner of")
	cmd.Flags().BoolVar(&superadmin, "superadmin", false, "grant the platform superadmin role instead")

	return cmd
}
