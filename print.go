package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"q.log/lpsolve/milp"
	"q.log/lpsolve/model"
	"q.log/lpsolve/simplex"
)

func printResult(out io.Writer, m *model.Model, res *milp.Result, duals bool) error {
	fmt.Fprintf(out, "Status: %s\n", res.Status)
	if !res.Status.HasSolution() {
		switch res.Status {
		case simplex.StatusInfeasible:
			fmt.Fprintln(out, "This problem is infeasible")
		case simplex.StatusUnbounded:
			fmt.Fprintln(out, "This problem is unbounded")
		}
		return nil
	}
	fmt.Fprintf(out, "\nValue of objective function: %g\n\n", res.Objective)

	tw := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "Actual values of the variables:")
	for j := 1; j <= m.Columns(); j++ {
		fmt.Fprintf(tw, "%s\t%g\n", m.ColName(j), res.Value(j))
	}
	fmt.Fprintln(tw, "\nActual values of the constraints:")
	for i := 1; i <= m.Rows(); i++ {
		fmt.Fprintf(tw, "%s\t%g\n", m.RowName(i), res.Activity(i))
	}
	if duals {
		fmt.Fprintln(tw, "\nDual value:")
		for i := 1; i <= m.Rows(); i++ {
			fmt.Fprintf(tw, "%s\t%g\n", m.RowName(i), res.Dual(i))
		}
	}
	fmt.Fprintf(tw, "\n%d nodes, %d iterations\n", res.Nodes, res.Iterations)
	return tw.Flush()
}
