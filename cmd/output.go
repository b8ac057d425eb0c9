package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/quests"
	"github.com/abhisek/dailyquest/internal/rewards"
	"github.com/abhisek/dailyquest/internal/ui/theme"
)

// report prints res and turns a failed result into a command error.
func report(cmd *cobra.Command, res quests.Result) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else if res.Data != nil {
		printSnapshot(out, res.Data, res.Changed)
	}

	if !res.Success {
		return fmt.Errorf("%s (%s)", res.Error, res.Code)
	}
	return nil
}

func printSnapshot(w io.Writer, s *quests.Snapshot, changed bool) {
	p := theme.For(w)
	row := func(label, value string) {
		fmt.Fprintf(w, "%s %s\n", p.Paint(theme.Label, fmt.Sprintf("%-12s", label)), value)
	}

	row("User", s.UserID)
	row("State", p.Paint(theme.State(s.State), string(s.State)))
	row("Quest", fmt.Sprintf("#%d %s (difficulty %d)", s.QuestIndex, p.Paint(theme.Title, s.Quest.Title), s.Quest.Difficulty))
	for _, e := range s.Quest.Exercises {
		amount := fmt.Sprintf("%d reps", e.Reps)
		if e.Seconds > 0 {
			amount = fmt.Sprintf("%ds", e.Seconds)
		}
		row("", fmt.Sprintf("  %-24s %s", e.Name, amount))
	}
	row("Remaining", fmt.Sprintf("%s (until %s)", s.Remaining.Round(time.Minute), s.CountdownEnd.Format(time.RFC3339)))
	row("Streak", fmt.Sprintf("%d", s.Streak))
	row("Totals", fmt.Sprintf("%d XP, %d coins, %d stat points", s.XP, s.Coins, s.StatPoints))

	parts := make([]string, 0, len(rewards.AllStats()))
	for _, name := range rewards.AllStats() {
		parts = append(parts, fmt.Sprintf("%s %d", name, s.Stats[name]))
	}
	row("Stats", strings.Join(parts, ", "))

	for _, o := range s.Outcomes {
		line := fmt.Sprintf("%s -> %s (%s)", o.From, o.To, o.Trigger)
		if o.Reward != nil {
			line += p.Paint(theme.Reward, fmt.Sprintf(", +%d XP +%d coins +%d points", o.Reward.XP, o.Reward.Coins, o.Reward.StatPoints))
		}
		if o.Missed > 1 {
			line += fmt.Sprintf(", %d periods missed", o.Missed)
		}
		if len(o.StatLoss) > 0 {
			line += p.Paint(theme.Penalty, ", stats drained")
		}
		row("Applied", line)
	}
	if !changed && len(s.Outcomes) == 0 {
		row("", p.Paint(theme.Hint, "(no change)"))
	}
}
