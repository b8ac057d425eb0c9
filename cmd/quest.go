package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/quests"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Create a progression record and assign the first quest",
	RunE: func(cmd *cobra.Command, args []string) error {
		user, _ := cmd.Flags().GetString("user")
		gender, _ := cmd.Flags().GetString("gender")
		class, _ := cmd.Flags().GetString("class")
		env, _ := cmd.Flags().GetString("environment")
		days, _ := cmd.Flags().GetInt("days")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return report(cmd, a.service.Onboard(cmd.Context(), quests.OnboardRequest{
			UserID: user,
			Key: catalog.Key{
				Gender:      catalog.Gender(gender),
				Class:       catalog.Class(class),
				Environment: catalog.Environment(env),
				Frequency:   days,
			},
		}))
	},
}

// userCommand builds a command that runs one service operation for a user.
func userCommand(use, short string, op func(*quests.Service) func(context.Context, string) quests.Result) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <user-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()
			return report(cmd, op(a.service)(cmd.Context(), args[0]))
		},
	}
}

var (
	todayCmd = userCommand("today", "Show today's quest, catching up missed periods",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.LoadToday })
	snapshotCmd = userCommand("snapshot", "Show progression without changing it",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.Snapshot })
	completeCmd = userCommand("complete", "Mark the active quest as done",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.Complete })
	failCmd = userCommand("fail", "Give up on the active quest",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.Fail })
	expireCmd = userCommand("expire", "Apply any deadline that has passed",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.Expire })
	refreshCmd = userCommand("refresh", "Start the next quest before the cooldown ends",
		func(s *quests.Service) func(context.Context, string) quests.Result { return s.Refresh })
)

var allocateCmd = &cobra.Command{
	Use:   "allocate <user-id> <stat> <points>",
	Short: "Spend earned stat points",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		points, err := strconv.Atoi(args[2])
		if err != nil {
			return fmt.Errorf("points must be a number: %w", err)
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return report(cmd, a.service.Allocate(cmd.Context(), args[0], args[1], points))
	},
}

func init() {
	onboardCmd.Flags().String("user", "", "User ID (generated when empty)")
	onboardCmd.Flags().String("gender", "", "male or female (default male)")
	onboardCmd.Flags().String("class", "", "warrior or mage (default warrior)")
	onboardCmd.Flags().String("environment", "", "home or gym (default home)")
	onboardCmd.Flags().Int("days", 0, "Training days per week (default 3)")
}
