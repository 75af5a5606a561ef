package cli

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamDanklefsen/OptionsPricing-FD/cmd/fdprice/internal/task"
)

const (
	americanPut = `{"task_id":"am-put","payoff":"put","exercise":"american","strike":100,"maturity":1,"rate":0.05,"volatility":0.2,"spot":100,"spot_steps":120,"time_steps":60}`
	europeanPut = `{"task_id":"eu-put","payoff":"put","exercise":"european","strike":100,"maturity":1,"rate":0.05,"volatility":0.2,"spot":100,"spot_steps":120,"time_steps":60}`
)

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_NoArgsIsUsage(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := runCLI(t, "")
	assert.Equal(t, ExitUsage, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "fdprice")
}

func TestRun_UnknownCommand(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, "", "quote")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr, "unknown command")
}

func TestPrice_SingleObject(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := runCLI(t, americanPut, "price", "--log-level", "error")
	require.Equal(t, ExitOK, code, stderr)

	var out task.Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "am-put", out.TaskID)
	assert.Empty(t, out.Error)
	price, _ := out.Price.Float64()
	assert.InDelta(t, 6.08, price, 0.15)
	assert.Nil(t, out.Analytic)
	assert.Equal(t, 121, out.GridPoints)
}

func TestPrice_ArrayKeepsOrderAndReportsFailures(t *testing.T) {
	t.Parallel()

	bad := `{"task_id":"bad","payoff":"put","exercise":"american","strike":100,"maturity":1,"volatility":0.2,"spot":-1}`
	input := "[" + europeanPut + "," + bad + "," + americanPut + "]"

	code, stdout, _ := runCLI(t, input, "price", "--workers", "2", "--places", "3", "--log-level", "panic")
	assert.Equal(t, ExitError, code)

	var outs []task.Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &outs))
	require.Len(t, outs, 3)

	assert.Equal(t, "eu-put", outs[0].TaskID)
	assert.Empty(t, outs[0].Error)
	require.NotNil(t, outs[0].Analytic)
	assert.LessOrEqual(t, int(-outs[0].Price.Exponent()), 3)

	assert.Equal(t, "bad", outs[1].TaskID)
	assert.NotEmpty(t, outs[1].Error)

	assert.Equal(t, "am-put", outs[2].TaskID)
	assert.Empty(t, outs[2].Error)

	eu, _ := outs[0].Price.Float64()
	am, _ := outs[2].Price.Float64()
	assert.Greater(t, am, eu)
}

func TestPrice_InputFileAndGeneratedID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "task.json")
	body := strings.Replace(europeanPut, `"task_id":"eu-put",`, "", 1)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	code, stdout, stderr := runCLI(t, "", "price", "--input", path, "--log-level", "error")
	require.Equal(t, ExitOK, code, stderr)

	var out task.Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Len(t, out.TaskID, 36)
}

func TestPrice_BadInput(t *testing.T) {
	t.Parallel()

	code, _, stderr := runCLI(t, "not json", "price")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, stderr, "parse input")

	code, _, _ = runCLI(t, americanPut, "price", "--workers", "0")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = runCLI(t, americanPut, "price", "--no-such-flag")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = runCLI(t, americanPut, "price", "--log-level", "loud")
	assert.Equal(t, ExitUsage, code)
}

func TestCurve_CSV(t *testing.T) {
	t.Parallel()

	code, stdout, stderr := runCLI(t, americanPut, "curve", "--stride", "10", "--log-level", "error")
	require.Equal(t, ExitOK, code, stderr)

	records, err := csv.NewReader(strings.NewReader(stdout)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1+13)
	assert.Equal(t, []string{"spot", "value", "intrinsic", "time_value"}, records[0])

	// S=0: deep in the money put equals intrinsic.
	v, err := strconv.ParseFloat(records[1][1], 64)
	require.NoError(t, err)
	assert.InDelta(t, 100, v, 1e-9)

	for _, rec := range records[1:] {
		value, _ := strconv.ParseFloat(rec[1], 64)
		intrinsic, _ := strconv.ParseFloat(rec[2], 64)
		assert.GreaterOrEqual(t, value, intrinsic)
	}
}

func TestCurve_WritesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "curve.csv")
	code, stdout, stderr := runCLI(t, europeanPut, "curve", "--out", path, "--log-level", "error")
	require.Equal(t, ExitOK, code, stderr)
	assert.Empty(t, stdout)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1+121, strings.Count(string(raw), "\n"))
}

func TestCurve_RejectsArrays(t *testing.T) {
	t.Parallel()

	code, _, _ := runCLI(t, "["+americanPut+","+europeanPut+"]", "curve")
	assert.Equal(t, ExitUsage, code)
}

func TestConvergence_Table(t *testing.T) {
	t.Parallel()

	call := `{"payoff":"call","exercise":"european","strike":100,"maturity":1,"rate":0.05,"volatility":0.2,"spot":100}`
	code, stdout, stderr := runCLI(t, call, "convergence", "--base", "25", "--levels", "3", "--log-level", "error")
	require.Equal(t, ExitOK, code, stderr)

	assert.Contains(t, stdout, "N_S")
	assert.Contains(t, stdout, "25")
	assert.Contains(t, stdout, "100")
	assert.Contains(t, stdout, "empirical order:")
}

func TestConvergence_RejectsBadLevels(t *testing.T) {
	t.Parallel()

	code, _, _ := runCLI(t, americanPut, "convergence", "--levels", "1")
	assert.Equal(t, ExitUsage, code)
}

func TestEmpiricalOrder(t *testing.T) {
	t.Parallel()

	// err = 3/N^2
	var rows []level
	for _, n := range []int{10, 20, 40, 80} {
		rows = append(rows, level{spotSteps: n, timeSteps: n, err: 3 / float64(n*n)})
	}
	order, err := empiricalOrder(rows)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, order, 1e-9)

	_, err = empiricalOrder([]level{{spotSteps: 10, err: 0.1}, {spotSteps: 20}})
	assert.Error(t, err)
}

func TestPrice_NonFiniteTaskDoesNotSinkBatch(t *testing.T) {
	t.Parallel()

	wild := `{"task_id":"wild","payoff":"call","exercise":"european","strike":100,"maturity":1,"volatility":1e200,"spot":100,"spot_steps":40,"time_steps":10}`
	input := "[" + wild + "," + americanPut + "]"

	code, stdout, _ := runCLI(t, input, "price", "--log-level", "panic")
	assert.Equal(t, ExitError, code)

	var outs []task.Output
	require.NoError(t, json.Unmarshal([]byte(stdout), &outs))
	require.Len(t, outs, 2)
	assert.Equal(t, "wild", outs[0].TaskID)
	assert.Contains(t, outs[0].Error, "non-finite")
	assert.Equal(t, "am-put", outs[1].TaskID)
	assert.Empty(t, outs[1].Error)
}
