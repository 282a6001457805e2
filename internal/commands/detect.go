package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/domain/anomaly"
	"github.com/ledgerlens/ledgerlens/internal/domain/forecast"
	"github.com/ledgerlens/ledgerlens/internal/domain/recurring"
)

func newRecurringCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recurring",
		Short: "Detect recurring payments in the stored transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			txs, err := a.store.LoadTransactions()
			if err != nil {
				return err
			}

			detector := recurring.NewDetector(a.cfg.Detection.RecurringAmountBand, a.logger)
			payments := detector.Detect(txs)
			if len(payments) == 0 {
				fmt.Println("no recurring payments detected")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MERCHANT\tAMOUNT\tFREQUENCY\tNEXT EXPECTED\tCATEGORY\tCONFIDENCE")
			for _, p := range payments {
				fmt.Fprintf(w, "%s\t%.2f\t%s\t%s\t%s\t%d%%\n",
					p.Merchant, p.Amount, p.Frequency,
					p.NextExpected.Format("2006-01-02"), p.Category, p.Confidence)
			}
			return w.Flush()
		},
	}
}

func newAnomaliesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "anomalies",
		Short: "Flag high-amount, duplicate and spending-spike transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			txs, err := a.store.LoadTransactions()
			if err != nil {
				return err
			}

			detector := anomaly.NewDetector(anomaly.Options{
				HighAmountRatio: a.cfg.Detection.HighAmountRatio,
				CriticalRatio:   a.cfg.Detection.CriticalRatio,
				SpikeRatio:      a.cfg.Detection.SpikeRatio,
				DuplicatePlaces: int32(a.cfg.Detection.DuplicatePlaces),
			}, a.logger)
			findings := detector.Detect(txs)
			if len(findings) == 0 {
				fmt.Println("no anomalies detected")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "KIND\tSEVERITY\tTRANSACTION\tDESCRIPTION")
			for _, f := range findings {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Kind, f.Severity, f.TransactionID, f.Description)
			}
			return w.Flush()
		},
	}
}

func newForecastCommand() *cobra.Command {
	var (
		horizon int
		floor   float64
	)

	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Project the end-of-period balance and near-term cash flow",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.close()

			txs, err := a.store.LoadTransactions()
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("floor") {
				floor = a.cfg.Detection.ForecastFloor
			}

			obligations := recurring.NewDetector(a.cfg.Detection.RecurringAmountBand, a.logger).Detect(txs)
			engine := forecast.NewEngine(floor, a.logger)

			f := engine.ForecastEndOfPeriod(txs, obligations)
			if f == nil {
				fmt.Println("no transactions to forecast from")
				return nil
			}

			fmt.Printf("projected balance on %s: %.2f (range %.2f to %.2f)\n",
				f.TargetDate.Format("2006-01-02"), f.Predicted, f.Confidence.Low, f.Confidence.High)
			for _, assumption := range f.Assumptions {
				fmt.Printf("  - %s\n", assumption)
			}
			if level, msg := engine.Warn(f); level != forecast.WarningNone {
				fmt.Printf("%s: %s\n", level, msg)
			}

			if projection := engine.ProjectCashFlow(txs, obligations, horizon); projection != nil {
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "DATE\tNET\tBALANCE")
				for _, day := range projection.Days {
					fmt.Fprintf(w, "%s\t%+.2f\t%.2f\n", day.Date.Format("2006-01-02"), day.Net, day.Balance)
				}
				if err := w.Flush(); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&horizon, "horizon", 14, "days of cash flow to project")
	cmd.Flags().Float64Var(&floor, "floor", 0, "low-balance warning floor (defaults to configuration)")

	return cmd
}
