package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"github.com/AdamDanklefsen/OptionsPricing-FD/cmd/fdprice/internal/task"
)

// curveRow is one CSV line of a valuation curve.
type curveRow struct {
	Spot      float64 `csv:"spot"`
	Value     float64 `csv:"value"`
	Intrinsic float64 `csv:"intrinsic"`
	TimeValue float64 `csv:"time_value"`
}

func newCurveCommand(e *env) *cobra.Command {
	var (
		inputPath string
		outPath   string
		stride    int
	)

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Write the full valuation curve of one task as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if stride < 1 {
				return fmt.Errorf("%w: --stride must be at least 1", errUsage)
			}
			inputs, _, err := readTasks(cmd, inputPath)
			if err != nil {
				return err
			}
			if len(inputs) != 1 {
				return fmt.Errorf("%w: curve takes exactly one task, got %d", errUsage, len(inputs))
			}
			in := inputs[0].WithID()

			solver, curve, err := task.Solve(in, e.cfg.Solver, e.log)
			if err != nil {
				return fmt.Errorf("curve: %w", err)
			}
			terms := solver.Terms()

			rows := make([]*curveRow, 0, curve.Len()/stride+1)
			for i := 0; i < curve.Len(); i += stride {
				s, v := curve.Spots[i], curve.Values[i]
				intrinsic := terms.Intrinsic(s)
				rows = append(rows, &curveRow{Spot: s, Value: v, Intrinsic: intrinsic, TimeValue: v - intrinsic})
			}

			var w io.Writer = cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("curve: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := gocsv.Marshal(rows, w); err != nil {
				return fmt.Errorf("curve: write csv: %w", err)
			}
			e.log.WithField("task_id", in.TaskID).WithField("rows", len(rows)).Debug("curve written")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "input JSON file (default: stdin)")
	f.StringVarP(&outPath, "out", "o", "", "output CSV file (default: stdout)")
	f.IntVar(&stride, "stride", 1, "emit every n-th grid point")
	return cmd
}
