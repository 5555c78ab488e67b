package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/armadaproject/fairdiv/internal/common/fairdiverrors"
	"github.com/armadaproject/fairdiv/internal/fairdivctl"
	"github.com/armadaproject/fairdiv/internal/fairness/report"
)

func writeFile(t *testing.T, name, contents string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	a := fairdivctl.New()
	buf := new(bytes.Buffer)
	a.Out = buf
	cmd := rootCmdWithApp(a)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommands(t *testing.T) {
	config := writeFile(t, "config.yaml", "logging:\n  level: error\n")
	problem := writeFile(t, "problem.yaml", "preferences:\n  - [8, 4, 2]\n  - [2, 6, 5]\nbudgets: [60, 60]\n")
	tests := map[string]struct {
		args     []string
		expected []string
	}{
		"egalitarian": {
			args:     []string{"egalitarian", "-p", "80,19,1;79,1,20"},
			expected: []string{"Status: optimal\n", "optimal value: 59.2", "--- Allocation ---"},
		},
		"utilitarian": {
			args:     []string{"utilitarian", "--preferences", "80,19,1;79,1,20"},
			expected: []string{"Agent #2 gets 0.00 of resource #1, 0.00 of resource #2, and 1.00 of resource #3.\n"},
		},
		"nash from file": {
			args:     []string{"nash", "-f", problem},
			expected: []string{"Status: optimal\n"},
		},
		"nash two agent": {
			args:     []string{"nash-two-agent", "0.25"},
			expected: []string{"t: 0.25\n", "Agent #1 gets 1.00 of resource #1, and 0.00 of resource #2.\n"},
		},
		"equilibrium from file": {
			args:     []string{"equilibrium", "--file", problem},
			expected: []string{"Price of resource #1: 60.00\n", "Agent #2 spends 60.00 of a budget of 60.00.\n"},
		},
		"equilibrium with budgets overriding the file": {
			args:     []string{"equilibrium", "--file", problem, "--budgets", "60,40"},
			expected: []string{"Price of resource #1: 52.17\n", "Agent #2 spends 40.00 of a budget of 40.00.\n"},
		},
		"print metrics": {
			args:     []string{"utilitarian", "-p", "1,2;2,1", "--print-metrics"},
			expected: []string{`fairdiv_allocations_total{criterion="utilitarian",status="optimal"} 1`},
		},
		"version": {
			args:     []string{"version"},
			expected: []string{"Version:", "Commit:", "Simplex tolerance:"},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := execute(t, append(tc.args, "--config", config)...)
			require.NoError(t, err)
			for _, s := range tc.expected {
				assert.Contains(t, out, s)
			}
		})
	}
}

func TestCommands_Quiet(t *testing.T) {
	out, err := execute(t, "nash", "-p", "1,2;2,1", "--quiet")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, "nash", "-p", "1,2;2,1", "-q", "--print-metrics")
	require.NoError(t, err)
	assert.NotContains(t, out, "Status:")
	assert.Contains(t, out, `fairdiv_allocations_total{criterion="nash",status="optimal"} 1`)
}

func TestCommands_JsonOutput(t *testing.T) {
	config := writeFile(t, "config.yaml", "output: yaml\n")
	out, err := execute(t, "egalitarian", "-p", "100,0;0,50", "--config", config, "-o", "json")
	require.NoError(t, err)

	var r report.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.Equal(t, "egalitarian", r.Criterion)
	require.NotNil(t, r.OptimalValue)
	assert.InDelta(t, 50, *r.OptimalValue, 1e-6)
}

func TestCommands_UserConfig(t *testing.T) {
	homedir.DisableCache = true
	defer func() { homedir.DisableCache = false }()
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.WriteFile(filepath.Join(home, userConfigFile), []byte("output: yaml\n"), 0o600))

	out, err := execute(t, "nash-two-agent", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "criterion: nash\n")
}

func TestCommands_Errors(t *testing.T) {
	config := writeFile(t, "config.yaml", "logging:\n  level: error\n")
	tests := map[string]struct {
		args  []string
		check func(t *testing.T, err error)
	}{
		"missing preferences": {
			args: []string{"egalitarian"},
			check: func(t *testing.T, err error) {
				assert.True(t, fairdiverrors.IsInvalidArgument(err))
			},
		},
		"malformed preferences": {
			args: []string{"nash", "-p", "1,x;2,3"},
			check: func(t *testing.T, err error) {
				assert.True(t, fairdiverrors.IsInvalidArgument(err))
			},
		},
		"preferences and file": {
			args: []string{"nash", "-p", "1,2;2,1", "-f", "problem.yaml"},
		},
		"t is not a number": {
			args: []string{"nash-two-agent", "half"},
			check: func(t *testing.T, err error) {
				assert.True(t, fairdiverrors.IsInvalidArgument(err))
			},
		},
		"t missing": {
			args: []string{"nash-two-agent"},
		},
		"unknown output": {
			args: []string{"nash", "-p", "1,2;2,1", "-o", "xml"},
		},
		"missing config": {
			args: []string{"nash", "-p", "1,2;2,1", "--config", filepath.Join(t.TempDir(), "missing.yaml")},
		},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, append(tc.args, "--config", config)...)
			require.Error(t, err)
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}
