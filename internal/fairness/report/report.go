// Package report renders allocation results for people and for other programs.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/armadaproject/fairdiv/internal/fairness/allocation"
	"github.com/armadaproject/fairdiv/internal/fairness/division"
	"github.com/armadaproject/fairdiv/internal/fairness/equilibrium"
)

// Report is the outcome of one allocation, in a form suitable for serialisation.
// Allocation is indexed by resource and then by agent.
type Report struct {
	Criterion    string      `json:"criterion"`
	Status       string      `json:"status"`
	OptimalValue *float64    `json:"optimalValue,omitempty"`
	T            *float64    `json:"t,omitempty"`
	Utilities    []float64   `json:"utilities"`
	Allocation   [][]float64 `json:"allocation,omitempty"`
	Budgets      []float64   `json:"budgets,omitempty"`
	Prices       []float64   `json:"prices,omitempty"`
	Spending     []float64   `json:"spending,omitempty"`
}

func FromResult(criterion string, r *allocation.Result) *Report {
	return &Report{
		Criterion:  criterion,
		Status:     string(r.Status),
		Utilities:  r.Utilities,
		Allocation: r.Allocation,
	}
}

func FromEgalitarian(r *allocation.EgalitarianResult) *Report {
	rv := FromResult("egalitarian", &r.Result)
	if r.IsOptimal() {
		z := r.OptimalValue
		rv.OptimalValue = &z
	}
	return rv
}

func FromNashTwoAgent(t float64, r *allocation.NashTwoAgentResult) *Report {
	rv := &Report{
		Criterion:  "nash",
		Status:     string(r.Status),
		T:          &t,
		Allocation: r.Allocation,
		Utilities:  make([]float64, 2),
	}
	if r.Allocation != nil {
		rv.Utilities = division.Utilities(division.Preferences{{1, 0}, {t, 1 - t}}, r.Allocation)
	}
	return rv
}

func FromEquilibrium(budgets division.Budgets, r *equilibrium.Result) *Report {
	return &Report{
		Criterion:  "fisher",
		Status:     string(r.Status),
		Utilities:  r.Utilities,
		Allocation: r.Allocation,
		Budgets:    budgets,
		Prices:     r.Prices,
		Spending:   r.Spending(),
	}
}

// Write renders r to w in the given format.
func Write(w io.Writer, r *Report, format Format) error {
	var out []byte
	var err error
	switch format {
	case FormatText:
		out = []byte(Text(r))
	case FormatYaml:
		out, err = yaml.Marshal(r)
	case FormatJson:
		out, err = json.MarshalIndent(r, "", "  ")
		out = append(out, '\n')
	default:
		_, err = ParseFormat(string(format))
	}
	if err != nil {
		return errors.WithMessagef(err, "rendering %s report", format)
	}
	_, err = w.Write(out)
	return errors.WithStack(err)
}

// Text renders r in a human-readable form.
// Shares are printed with two decimals; other numbers in full.
func Text(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Status: %s\n", r.Status)
	if r.T != nil {
		fmt.Fprintf(&b, "t: %v\n", *r.T)
	}
	if r.OptimalValue != nil {
		fmt.Fprintf(&b, "optimal value: %v\n", *r.OptimalValue)
	}
	for i, u := range r.Utilities {
		fmt.Fprintf(&b, "Utility for Agent %d: %v\n", i+1, u)
	}
	if r.Allocation == nil {
		return b.String()
	}

	b.WriteString("\n--- Allocation ---\n\n")
	alloc := division.Allocation(r.Allocation)
	_, agents := alloc.Shape()
	for i := 0; i < agents; i++ {
		bundle := alloc.Bundle(i)
		items := make([]string, len(bundle))
		for j, share := range bundle {
			items[j] = fmt.Sprintf("%.2f of resource #%d", share, j+1)
		}
		fmt.Fprintf(&b, "Agent #%d gets %s.\n\n", i+1, joinItems(items))
	}

	if r.Prices != nil {
		b.WriteString("--- Prices ---\n\n")
		for j, p := range r.Prices {
			fmt.Fprintf(&b, "Price of resource #%d: %.2f\n", j+1, p)
		}
		for i, s := range r.Spending {
			fmt.Fprintf(&b, "Agent #%d spends %.2f", i+1, s)
			if i < len(r.Budgets) {
				fmt.Fprintf(&b, " of a budget of %.2f", r.Budgets[i])
			}
			b.WriteString(".\n")
		}
	}
	return b.String()
}

// joinItems lists items as "a, b, and c"; a single item is returned as-is.
func joinItems(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
}
