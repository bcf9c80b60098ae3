package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ip-filter/internal/config"
	"ip-filter/internal/ipv4_pool"
)

const sample = "113.162.145.156\t111\t0\n" +
	"46.70.225.39\t2\t0\n" +
	"1.87.203.225\t3\t0\n" +
	"185.46.86.131\t4\t0\n" +
	"46.70.29.76\t5\t0\n" +
	"185.46.86.131\t6\t0\n" +
	"1.1.234.8\t7\t0\n" +
	"46.55.46.98\t8\t0\n"

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	return cfg
}

func runApp(t *testing.T, cfg config.Config, in string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app, err := NewApp(cfg, strings.NewReader(in), &out)
	require.NoError(t, err)
	defer app.Close()

	err = app.Run(context.Background())
	return out.String(), err
}

func TestApp_DefaultQueries(t *testing.T) {
	got, err := runApp(t, testConfig(), sample)
	require.NoError(t, err)

	want := strings.Join([]string{
		// all
		"185.46.86.131\n185.46.86.131\n113.162.145.156\n46.70.225.39\n46.70.29.76\n46.55.46.98\n1.87.203.225\n1.1.234.8",
		// prefix:1
		"1.87.203.225\n1.1.234.8",
		// prefix:46.70
		"46.70.225.39\n46.70.29.76",
		// any:46
		"185.46.86.131\n185.46.86.131\n46.70.225.39\n46.70.29.76\n46.55.46.98",
	}, "\n") + "\n"
	assert.Equal(t, want, got)
}

func TestApp_Scenario(t *testing.T) {
	cfg := testConfig()
	cfg.Queries = []string{"all", "prefix:1", "any:4"}

	got, err := runApp(t, cfg, "222.173.235.246\tA\n1.2.3.4\tB\n1.1.234.8\tC\n\n9.9.9.9\n")
	require.NoError(t, err)
	assert.Equal(t, "222.173.235.246\n1.2.3.4\n1.1.234.8\n1.2.3.4\n1.1.234.8\n1.2.3.4\n", got)
}

func TestApp_EmptyResultPrintsEmptyLine(t *testing.T) {
	cfg := testConfig()
	cfg.Queries = []string{"prefix:7", "any:1"}

	got, err := runApp(t, cfg, "1.2.3.4\n")
	require.NoError(t, err)
	assert.Equal(t, "\n1.2.3.4\n", got)
}

func TestApp_MalformedLineFails(t *testing.T) {
	got, err := runApp(t, testConfig(), "1.2.3.4\n1.2.3\n")
	require.Error(t, err)
	assert.ErrorIs(t, err, ipv4_pool.ErrWrongArity)
	assert.Contains(t, err.Error(), "line 2")
	assert.Empty(t, got)
}

func TestApp_FileInputAndMetrics(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "ip_filter.tsv")
	require.NoError(t, os.WriteFile(input, []byte(sample), 0o600))

	cfg := testConfig()
	cfg.Input = input
	cfg.Queries = []string{"prefix:185.46.86"}
	cfg.MetricsFile = filepath.Join(dir, "ip_filter.prom")

	var out bytes.Buffer
	app, err := NewApp(cfg, strings.NewReader("ignored"), &out)
	require.NoError(t, err)
	defer app.Close()

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, "185.46.86.131\n185.46.86.131\n", out.String())
	assert.Equal(t, 8, app.Store().Len())

	data, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ip_filter_addresses_ingested_total 8")
	assert.Contains(t, string(data), "ip_filter_unique_addresses 7")
	assert.Contains(t, string(data), `ip_filter_query_result_addresses{query="prefix:185.46.86"} 2`)
}

func TestNewApp_Errors(t *testing.T) {
	cfg := testConfig()
	cfg.Input = filepath.Join(t.TempDir(), "missing.tsv")
	_, err := NewApp(cfg, nil, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg = testConfig()
	cfg.Queries = []string{"any:256"}
	_, err = NewApp(cfg, nil, nil)
	assert.ErrorIs(t, err, config.ErrConfigInvalid)
}

func TestApp_Canceled(t *testing.T) {
	var out bytes.Buffer
	app, err := NewApp(testConfig(), strings.NewReader(sample), &out)
	require.NoError(t, err)
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, app.Run(ctx), context.Canceled)
	assert.Empty(t, out.String())
}
