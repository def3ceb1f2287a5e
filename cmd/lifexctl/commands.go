package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"lifex-server/internal/domain"
	"lifex-server/internal/quota"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lifexctl",
		Short:         "Inspect LifeX assistant quotas",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCheckCmd(), newPolicyCmd(), newResetCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	var (
		tier, assistant, lang, at string
		usage                     int
		warningRatio              float64
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate an assistant quota decision",
		Long: `Evaluate the decision a user would get for their next assistant message.

Unknown tiers are treated as free. --lang accepts a language code or a
sample of the user's message; the decision is printed as JSON.`,
		Example: `  lifexctl check --tier essential --assistant coly --usage 42
  lifexctl check --tier premium --assistant max --usage 50 --lang zh --now 2024-01-01T14:37:22Z`,
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}
			engine := quota.NewEngine(
				quota.WithClock(func() time.Time { return now }),
				quota.WithWarningRatio(warningRatio),
			)
			d := engine.Check(domain.Tier(tier), domain.Assistant(assistant), lang, usage)
			return printJSON(cmd.OutOrStdout(), d)
		},
	}

	cmd.Flags().StringVar(&tier, "tier", string(domain.TierFree), "subscription tier (free, essential, premium)")
	cmd.Flags().StringVar(&assistant, "assistant", string(domain.AssistantColy), "assistant (coly, max)")
	cmd.Flags().IntVar(&usage, "usage", 0, "messages already sent this hour")
	cmd.Flags().StringVar(&lang, "lang", "", "language code or message text")
	cmd.Flags().StringVar(&at, "now", "", "evaluation time in RFC3339 (default: current time)")
	cmd.Flags().Float64Var(&warningRatio, "warning-ratio", quota.DefaultWarningRatio, "fraction of the limit that triggers a warning")
	return cmd
}

func newPolicyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "policy",
		Short: "Print the quota table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), quota.DefaultPolicy())
		},
	}
}

func newResetCmd() *cobra.Command {
	var at, last string
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Print the next hourly and monthly reset boundaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := parseNow(at)
			if err != nil {
				return err
			}
			out := map[string]interface{}{
				"now":           now.UTC().Format(time.RFC3339),
				"hour_bucket":   quota.HourBucket(now).Format(time.RFC3339),
				"next_reset":    quota.NextResetISO(now),
				"monthly_reset": quota.NextMonthlyReset(now).Format(time.RFC3339),
			}
			if last != "" {
				lastReset, err := time.Parse(time.RFC3339, last)
				if err != nil {
					return fmt.Errorf("invalid --last %q: %w", last, err)
				}
				out["should_reset"] = quota.ShouldReset(lastReset, now)
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&at, "now", "", "reference time in RFC3339 (default: current time)")
	cmd.Flags().StringVar(&last, "last", "", "last reset time in RFC3339; reports whether a stored counter is stale")
	return cmd
}

func parseNow(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --now %q: %w", s, err)
	}
	return t, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
