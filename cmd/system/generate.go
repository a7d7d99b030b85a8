package system

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Alijeyrad/serviceflow_backend/internal/model"
	"github.com/Alijeyrad/serviceflow_backend/internal/service/recurring"
	"github.com/Alijeyrad/serviceflow_backend/internal/store"
	"github.com/Alijeyrad/serviceflow_backend/pkg/database"
	"github.com/Alijeyrad/serviceflow_backend/pkg/logs"
)

// NewGenerateCommand fills a date range with recurring job instances from the
// command line, for cron setups that do not go through the API.
func NewGenerateCommand() *cobra.Command {
	var (
		from  string
		to    string
		owner string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate recurring job instances for a date range",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := readConfig(cmd)
			if err != nil {
				return err
			}
			slog.SetDefault(logs.New(cfg))

			if from == "" {
				from = model.Today().String()
			}
			if to == "" {
				start, err := model.ParseDate(from)
				if err != nil {
					return fmt.Errorf("%w: %v", recurring.ErrInvalidRange, err)
				}
				to = start.AddDays(cfg.Recurrence.HorizonDays).String()
			}
			rng, err := recurring.ParseRange(from, to)
			if err != nil {
				return err
			}

			drv, err := database.NewDriver(cfg.Database)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			st := store.New(drv)
			defer st.Close()

			svc := recurring.New(st, nil, nil, slog.Default())

			var n int
			if owner == "" {
				n, err = svc.GenerateAll(cmd.Context(), recurring.SourceCLI, rng)
			} else {
				id, perr := uuid.Parse(owner)
				if perr != nil {
					return fmt.Errorf("invalid --owner: %w", perr)
				}
				n, err = svc.Generate(cmd.Context(), recurring.SourceCLI, id, rng)
			}
			if err != nil {
				return err
			}

			fmt.Printf("Generated %d recurring job(s) for %s.\n", n, rng)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&to, "to", "", "last date, YYYY-MM-DD (default from + horizon_days)")
	cmd.Flags().StringVar(&owner, "owner", "", "limit generation to one business id")

	return cmd
}
