package main

import (
	"fmt"
	"io"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-admin-client/internal/app"
	"github.com/jrsteele09/go-admin-client/internal/config"
	"github.com/jrsteele09/go-admin-client/internal/logging"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

type rootFlags struct {
	envFile     string
	quiet       bool
	showMetrics bool
}

func newRootCmd(appOptions ...app.Option) *cobra.Command {
	var (
		flags rootFlags
		a     *app.App
	)

	root := &cobra.Command{
		Use:           "adminctl",
		Short:         "Command line client for the CMS admin API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(flags.envFile, cmd.Flags().Changed("env-file")); err != nil {
				return err
			}

			cfg := config.New()
			logger := logging.New(cfg.GetEnv(), cfg.GetLogLevel())
			if !cfg.IsRelease() && !flags.quiet {
				displayAppname(cmd.ErrOrStderr(), cfg.GetAppName())
			}

			var err error
			a, err = app.New(cmd.Context(), cfg, logger, appOptions...)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a == nil {
				return
			}
			if flags.showMetrics {
				printMetrics(cmd.ErrOrStderr(), a)
			}
			a.Close()
		},
	}

	root.PersistentFlags().StringVar(&flags.envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	root.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "suppress the banner")
	root.PersistentFlags().BoolVar(&flags.showMetrics, "metrics", false, "print session metrics to stderr on exit")

	current := func() *app.App { return a }
	root.AddCommand(
		newLoginCmd(current),
		newLogoutCmd(current),
		newWhoamiCmd(current),
		newGetCmd(current),
		newVerdictCmd(current),
		newPrefsCmd(current),
	)
	return root
}

// loadEnvFile applies a dotenv file. A missing default file is not an error.
func loadEnvFile(path string, explicit bool) error {
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return fmt.Errorf("env file: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func displayAppname(w io.Writer, appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(w, myFigure.String())
}

func printMetrics(w io.Writer, a *app.App) {
	families, err := a.Metrics.Registry().Gather()
	if err != nil {
		fmt.Fprintf(w, "metrics unavailable: %v\n", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(w, "%s%s %v\n", mf.GetName(), labels(m), sample(mf.GetType(), m))
		}
	}
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	out := "{"
	for i, l := range m.GetLabel() {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return out + "}"
}

func sample(t dto.MetricType, m *dto.Metric) any {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_HISTOGRAM:
		return fmt.Sprintf("count=%d sum=%.3fs", m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
	default:
		return m.String()
	}
}
