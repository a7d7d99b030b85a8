package system

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	pasetotoken "github.com/Alijeyrad/serviceflow_backend/pkg/paseto"
	"github.com/Alijeyrad/serviceflow_backend/pkg/redis"
)

// NewTokenCommand issues a long-lived access token for a scheduler or other
// automation calling the API on a business's behalf.
func NewTokenCommand() *cobra.Command {
	var (
		userID     string
		businessID string
		ttl        time.Duration
		session    bool
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an access token for automation",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}

			uid := uuid.New()
			if userID != "" {
				if uid, err = uuid.Parse(userID); err != nil {
					return fmt.Errorf("invalid --user: %w", err)
				}
			}
			bid, err := uuid.Parse(businessID)
			if err != nil {
				return fmt.Errorf("invalid --business: %w", err)
			}

			mgr, err := pasetotoken.NewPasetoManager(cfg)
			if err != nil {
				return fmt.Errorf("failed to create token manager: %w", err)
			}

			sub := pasetotoken.Subject{UserID: uid, BusinessID: bid}
			if session {
				rdb, err := redis.NewRedisFromCentral(cfg.Redis)
				if err != nil {
					return fmt.Errorf("failed to connect to redis: %w", err)
				}
				defer rdb.Close()

				sessions := redis.NewSessionStore(rdb, ttl)
				sid, err := sessions.Create(cmd.Context(), uid)
				if err != nil {
					return fmt.Errorf("failed to create session: %w", err)
				}
				sub.SessionID = &sid
			}

			tok, err := mgr.IssueAccessTTL(sub, ttl)
			if err != nil {
				return fmt.Errorf("failed to issue token: %w", err)
			}
			fmt.Println(tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "subject user id (random when empty)")
	cmd.Flags().StringVar(&businessID, "business", "", "business id the token acts for")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	cmd.Flags().BoolVar(&session, "session", false, "bind the token to a revocable Redis session")
	_ = cmd.MarkFlagRequired("business")

	return cmd
}
