package fairdivctl

import (
	"fmt"
	"text/tabwriter"

	"github.com/armadaproject/fairdiv/internal/fairdivctl/build"
)

// Version prints build information (e.g., current git commit) and the configured oracle settings to the app output.
func (a *App) Version() error {
	w := tabwriter.NewWriter(a.Out, 1, 1, 1, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", build.ReleaseVersion)
	fmt.Fprintf(w, "Commit:\t%s\n", build.GitCommit)
	fmt.Fprintf(w, "Go version:\t%s\n", build.GoVersion)
	fmt.Fprintf(w, "Built:\t%s\n", build.BuildTime)

	config := a.Params.Config
	fmt.Fprintf(w, "Simplex tolerance:\t%g\n", config.Simplex.Tolerance)
	fmt.Fprintf(
		w, "Barrier:\tinitial weight %g, decay %g, tolerance %g\n",
		config.Barrier.InitialWeight, config.Barrier.Decay, config.Barrier.Tolerance,
	)
	fmt.Fprintf(
		w, "Newton:\tat most %d iterations, gradient tolerance %g\n",
		config.Barrier.MaxNewtonIterations, config.Barrier.GradientTolerance,
	)
	fmt.Fprintf(w, "Timeout:\t%s\n", config.Timeout)
	return w.Flush()
}
