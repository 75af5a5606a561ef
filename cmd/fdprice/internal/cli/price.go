package cli

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AdamDanklefsen/OptionsPricing-FD/cmd/fdprice/internal/task"
)

func newPriceCommand(e *env) *cobra.Command {
	var (
		inputPath string
		workers   int
		places    int32
	)

	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price one task or an array of tasks from JSON",
		Long: `Reads a JSON task object or array from --input or stdin and writes one
result per task. A failing task reports its error in the "error" field and
does not stop the others; the exit code is 1 if any task failed.`,
		Example: `  echo '{"payoff":"put","exercise":"american","strike":100,"maturity":1,
         "rate":0.05,"volatility":0.2,"spot":100}' | fdprice price`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			inputs, isArray, err := readTasks(cmd, inputPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				e.cfg.Workers = workers
			}
			if cmd.Flags().Changed("places") {
				e.cfg.Places = places
			}
			if e.cfg.Workers < 1 {
				return fmt.Errorf("%w: --workers must be at least 1", errUsage)
			}

			outputs, failed := priceAll(e, inputs)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if isArray {
				err = enc.Encode(outputs)
			} else {
				err = enc.Encode(outputs[0])
			}
			if err != nil {
				return fmt.Errorf("price: encode output: %w", err)
			}
			if failed {
				return errTasksFailed
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&inputPath, "input", "i", "", "input JSON file (default: stdin)")
	f.IntVarP(&workers, "workers", "w", 0, "concurrent tasks (default from config)")
	f.Int32Var(&places, "places", 0, "decimal places in reported prices (default from config)")
	return cmd
}

// priceAll prices every input with at most cfg.Workers in flight. Outputs
// keep the input order.
func priceAll(e *env, inputs []task.Input) ([]task.Output, bool) {
	outputs := make([]task.Output, len(inputs))
	var failed atomic.Bool

	var g errgroup.Group
	g.SetLimit(e.cfg.Workers)
	for i, in := range inputs {
		i, in := i, in
		in = in.WithID()
		g.Go(func() error {
			out, err := priceOne(in, e)
			if err != nil {
				e.log.WithField("task_id", in.TaskID).WithError(err).Error("task failed")
				outputs[i] = task.Output{TaskID: in.TaskID, Error: err.Error()}
				failed.Store(true)
				return nil
			}
			outputs[i] = *out
			return nil
		})
	}
	_ = g.Wait()
	return outputs, failed.Load()
}

// priceOne turns a panic in one task into that task's error so the rest of
// the batch still reports.
func priceOne(in task.Input, e *env) (out *task.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("price: panic: %v", r)
		}
	}()
	return task.Price(in, e.cfg.Solver, e.log, e.cfg.Places)
}

// readTasks loads the task JSON from path or the command's stdin.
func readTasks(cmd *cobra.Command, path string) ([]task.Input, bool, error) {
	stdin := cmd.InOrStdin()
	if path == "" && task.IsTerminal(stdin) {
		return nil, false, fmt.Errorf("%w: provide --input or pipe JSON to stdin", errUsage)
	}
	raw, err := task.ReadInput(stdin, path)
	if err != nil {
		return nil, false, fmt.Errorf("%s: read input: %w", cmd.Name(), err)
	}
	inputs, isArray, err := task.ParseInputs(raw)
	if err != nil {
		return nil, false, fmt.Errorf("%s: parse input: %w", cmd.Name(), err)
	}
	return inputs, isArray, nil
}
