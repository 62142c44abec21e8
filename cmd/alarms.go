package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/croki-app/croki/internal/alarm"
	"github.com/spf13/cobra"
)

var alarmsCmd = &cobra.Command{
	Use:   "alarms",
	Short: "Manage practice reminders",
}

var alarmsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured reminders",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		rules := st.LoadAlarms()
		if len(rules) == 0 {
			fmt.Println("No reminders configured.")
			return nil
		}
		for i, r := range rules {
			state := "on "
			if !r.Enabled {
				state = "off"
			}
			fmt.Printf("%2d. [%s] %s at %s  %s\n", i+1, state, r.Title, r.Time, describeSchedule(r))
		}
		return nil
	},
}

var (
	alarmTitle   string
	alarmMessage string
	alarmTime    string
	alarmDate    string
	alarmDays    string
)

var alarmsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a reminder",
	RunE: func(cmd *cobra.Command, args []string) error {
		rule := alarm.Rule{
			Title:   alarmTitle,
			Message: alarmMessage,
			Time:    alarmTime,
			Enabled: true,
		}
		if alarmDate != "" {
			rule.Kind = alarm.KindDate
			rule.Date = alarmDate
		} else {
			rule.Kind = alarm.KindWeekday
			days, err := parseWeekdays(alarmDays)
			if err != nil {
				return err
			}
			rule.Weekdays = days
		}
		if err := rule.Validate(); err != nil {
			return err
		}

		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		rules := append(st.LoadAlarms(), rule)
		if err := st.SaveAlarms(rules); err != nil {
			return err
		}
		fmt.Printf("Added reminder %d.\n", len(rules))
		return nil
	},
}

var alarmsRemoveCmd = &cobra.Command{
	Use:   "remove <n>",
	Short: "Remove a reminder by its list number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editAlarm(cmd, args[0], func(rules []alarm.Rule, i int) []alarm.Rule {
			return append(rules[:i], rules[i+1:]...)
		})
	},
}

var alarmsEnableCmd = &cobra.Command{
	Use:   "enable <n>",
	Short: "Enable a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editAlarm(cmd, args[0], func(rules []alarm.Rule, i int) []alarm.Rule {
			rules[i].Enabled = true
			return rules
		})
	},
}

var alarmsDisableCmd = &cobra.Command{
	Use:   "disable <n>",
	Short: "Disable a reminder",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editAlarm(cmd, args[0], func(rules []alarm.Rule, i int) []alarm.Rule {
			rules[i].Enabled = false
			return rules
		})
	},
}

var alarmsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Print reminders due this minute and exit",
	Long:  "Evaluates all reminders against the current time and prints the due ones. Intended for external schedulers like cron.",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, closer, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer closer.Close()

		due := alarm.Evaluate(st.LoadAlarms(), time.Now())
		for _, r := range due {
			msg := r.Message
			if msg == "" {
				msg = "Time to practice."
			}
			fmt.Printf("%s: %s\n", r.Title, msg)
		}
		return nil
	},
}

func init() {
	alarmsAddCmd.Flags().StringVar(&alarmTitle, "title", "", "Reminder title")
	alarmsAddCmd.Flags().StringVar(&alarmMessage, "message", "", "Notification body")
	alarmsAddCmd.Flags().StringVar(&alarmTime, "time", "", "Time of day, HH:MM")
	alarmsAddCmd.Flags().StringVar(&alarmDate, "date", "", "One-shot date, YYYY-MM-DD")
	alarmsAddCmd.Flags().StringVar(&alarmDays, "days", "", "Weekdays, e.g. mon,wed,fri (default every day)")
	alarmsAddCmd.MarkFlagRequired("title")
	alarmsAddCmd.MarkFlagRequired("time")

	alarmsCmd.AddCommand(alarmsListCmd)
	alarmsCmd.AddCommand(alarmsAddCmd)
	alarmsCmd.AddCommand(alarmsRemoveCmd)
	alarmsCmd.AddCommand(alarmsEnableCmd)
	alarmsCmd.AddCommand(alarmsDisableCmd)
	alarmsCmd.AddCommand(alarmsCheckCmd)
}

// editAlarm applies fn to the rule at the 1-based list position and
// saves the result.
func editAlarm(cmd *cobra.Command, arg string, fn func([]alarm.Rule, int) []alarm.Rule) error {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("reminder number must be an integer: %w", err)
	}

	st, _, closer, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer closer.Close()

	rules := st.LoadAlarms()
	if n < 1 || n > len(rules) {
		return fmt.Errorf("no reminder %d (have %d)", n, len(rules))
	}
	return st.SaveAlarms(fn(rules, n-1))
}

var weekdayNames = map[string]int{
	"mon": alarm.Monday, "tue": alarm.Tuesday, "wed": alarm.Wednesday,
	"thu": alarm.Thursday, "fri": alarm.Friday, "sat": alarm.Saturday,
	"sun": alarm.Sunday,
}

// parseWeekdays turns "mon,wed,fri" into weekday numbers. Empty input
// means every day.
func parseWeekdays(s string) ([]int, error) {
	if s == "" {
		return []int{
			alarm.Monday, alarm.Tuesday, alarm.Wednesday, alarm.Thursday,
			alarm.Friday, alarm.Saturday, alarm.Sunday,
		}, nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func describeSchedule(r alarm.Rule) string {
	if r.Kind == alarm.KindDate {
		return "on " + r.Date
	}
	if len(r.Weekdays) == 7 {
		return "every day"
	}
	names := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}
	var parts []string
	for _, d := range r.Weekdays {
		if d >= 0 && d < len(names) {
			parts = append(parts, names[d])
		}
	}
	return strings.Join(parts, ",")
}
