package cli

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/montanaflynn/stats"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/AdamDanklefsen/OptionsPricing-FD/analytic"
	"github.com/AdamDanklefsen/OptionsPricing-FD/cmd/fdprice/internal/task"
)

// level is one row of a refinement study.
type level struct {
	spotSteps int
	timeSteps int
	price     float64
	err       float64
}

func newConvergenceCommand(e *env) *cobra.Command {
	var (
		inputPath string
		base      int
		levels    int
	)

	cmd := &cobra.Command{
		Use:   "convergence",
		Short: "Refine the grid and report the error at each level",
		Long: `Prices one task on successively doubled spot and time grids. European
contracts are compared with the closed-form Black-Scholes price; American
contracts with the finest level. The empirical order is the negated slope of
log(error) against log(N).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if base < 2 || levels < 2 {
				return fmt.Errorf("%w: --base and --levels must be at least 2", errUsage)
			}
			inputs, _, err := readTasks(cmd, inputPath)
			if err != nil {
				return err
			}
			if len(inputs) != 1 {
				return fmt.Errorf("%w: convergence takes exactly one task, got %d", errUsage, len(inputs))
			}
			in := inputs[0].WithID()

			rows, err := refine(e, in, base, levels)
			if err != nil {
				return fmt.Errorf("convergence: %w", err)
			}
			renderLevels(cmd.OutOrStdout(), rows)

			order, err := empiricalOrder(rows)
			if err != nil {
				e.log.WithError(err).Warn("cannot estimate convergence order")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "empirical order: %.2f\n", order)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "input JSON file (default: stdin)")
	f.IntVar(&base, "base", 50, "spot and time steps at the coarsest level")
	f.IntVar(&levels, "levels", 4, "number of refinement levels")
	return cmd
}

func refine(e *env, in task.Input, base, levels int) ([]level, error) {
	terms, err := in.Terms()
	if err != nil {
		return nil, err
	}

	rows := make([]level, 0, levels)
	n := base
	for k := 0; k < levels; k++ {
		step := in
		step.SpotSteps, step.TimeSteps = n, n
		_, curve, err := task.Solve(step, e.cfg.Solver, e.log)
		if err != nil {
			return nil, fmt.Errorf("level %d: %w", k, err)
		}
		rows = append(rows, level{spotSteps: n, timeSteps: n, price: curve.ValueAt(in.Spot)})
		n *= 2
	}

	ref := rows[len(rows)-1].price
	if !terms.IsAmerican() {
		if ref, err = analytic.BlackScholes(terms, in.Spot); err != nil {
			return nil, err
		}
	}
	for i := range rows {
		rows[i].err = math.Abs(rows[i].price - ref)
	}
	return rows, nil
}

// empiricalOrder fits log(err) against log(N) over the rows with a
// non-zero error.
func empiricalOrder(rows []level) (float64, error) {
	var series stats.Series
	for _, r := range rows {
		if r.err > 0 {
			series = append(series, stats.Coordinate{X: math.Log(float64(r.spotSteps)), Y: math.Log(r.err)})
		}
	}
	if len(series) < 2 {
		return 0, fmt.Errorf("need two levels with non-zero error, have %d", len(series))
	}
	fit, err := stats.LinearRegression(series)
	if err != nil {
		return 0, err
	}
	first, last := fit[0], fit[len(fit)-1]
	return -(last.Y - first.Y) / (last.X - first.X), nil
}

func renderLevels(w io.Writer, rows []level) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"N_S", "N_t", "Price", "Error", "Ratio"})
	for i, r := range rows {
		ratio := "-"
		if i > 0 && r.err > 0 {
			ratio = strconv.FormatFloat(rows[i-1].err/r.err, 'f', 2, 64)
		}
		table.Append([]string{
			strconv.Itoa(r.spotSteps),
			strconv.Itoa(r.timeSteps),
			strconv.FormatFloat(r.price, 'f', 6, 64),
			strconv.FormatFloat(r.err, 'e', 3, 64),
			ratio,
		})
	}
	table.Render()
}
