package cli

import (
	"log/slog"
	"time"

	"company-quiz-service/internal/app"
	"company-quiz-service/internal/config"
	"github.com/spf13/cobra"
)

// NewRemindCmd lists members whose quizzes are due for a retake.
// Delivery is left to whatever consumes the log output.
func NewRemindCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Report quiz retake reminders for company members",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			logger := newLogger(cfg)

			b, err := openBackends(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			reminders, err := app.NewReminder(b.catalog, b.ledger, b.authz).DueReminders(cmd.Context(), time.Now())
			if err != nil {
				return err
			}
			for _, r := range reminders {
				logger.Info(r.Message, slog.Int64("user_id", r.UserID), slog.Int64("quiz_id", r.QuizID))
			}
			logger.Info("reminders computed", slog.Int("count", len(reminders)))
			return nil
		},
	}
}
