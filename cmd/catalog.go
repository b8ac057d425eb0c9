package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/dailyquest/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Browse the quest catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every catalog route and its plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := catalog.Default()
		if err != nil {
			return err
		}

		class, _ := cmd.Flags().GetString("class")

		// Header.
		fmt.Printf("%-28s  %-18s  %5s\n", "Key", "Plan", "Days")
		fmt.Println(strings.Repeat("─", 55))

		n := 0
		for _, k := range c.Keys() {
			if class != "" && string(k.Class) != class {
				continue
			}
			seq, err := c.Resolve(k)
			if err != nil {
				return err
			}
			fmt.Printf("%-28s  %-18s  %5d\n", k.String(), seq.Plan(), seq.Len())
			n++
		}

		fmt.Printf("\n%d routes (catalog %s)\n", n, c.Version())
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the quest rotation for a profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		gender, _ := cmd.Flags().GetString("gender")
		class, _ := cmd.Flags().GetString("class")
		env, _ := cmd.Flags().GetString("environment")
		days, _ := cmd.Flags().GetInt("days")

		c, err := catalog.Default()
		if err != nil {
			return err
		}
		key := catalog.Key{
			Gender:      catalog.Gender(gender),
			Class:       catalog.Class(class),
			Environment: catalog.Environment(env),
			Frequency:   days,
		}.WithDefaults()

		seq, err := c.Resolve(key)
		if err != nil {
			return err
		}

		for i := 0; i < seq.Len(); i++ {
			q := seq.At(i)
			fmt.Printf("Day %d: %s (difficulty %d, %d reps, %ds)\n", q.Day, q.Title, q.Difficulty, q.TotalReps, q.TotalSeconds)
		}
		return nil
	},
}

func init() {
	catalogListCmd.Flags().String("class", "", "Filter by class (warrior or mage)")

	catalogShowCmd.Flags().String("gender", "", "male or female")
	catalogShowCmd.Flags().String("class", "", "warrior or mage")
	catalogShowCmd.Flags().String("environment", "", "home or gym")
	catalogShowCmd.Flags().Int("days", 0, "Training days per week")

	catalogCmd.AddCommand(catalogListCmd, catalogShowCmd)
}
