package main

import (
	"context"
	goflag "flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"q.log/lpsolve/instance"
	"q.log/lpsolve/milp"
	"q.log/lpsolve/model"
)

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	cmd := newRootCommand(os.Stdout)
	cmd.PersistentFlags().AddGoFlagSet(goflag.CommandLine)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:   "lpsolve [flags] model.mps",
		Short: "Solve a (mixed integer) linear program read from an MPS file",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(c *cobra.Command, args []string) error {
			return loadConfig(v, c.Flags())
		},
		RunE: func(c *cobra.Command, args []string) error {
			return run(c.Context(), v, args[0], out)
		},
		SilenceUsage: true,
	}
	addFlags(cmd.Flags())
	return cmd
}

func addFlags(fs *pflag.FlagSet) {
	def := milp.DefaultOptions()
	fs.String("config", "", "config file (yaml, toml or json) holding flag values")
	fs.Bool("fixed", false, "read fixed column MPS instead of free MPS")
	fs.Bool("print-duals", false, "print the dual value of every row")
	fs.Bool("print-all", false, "print the model before solving")
	fs.String("write-lp", "", "write the model in LP format to this file and continue")
	fs.Duration("timeout", 0, "stop the search after this long and report the best solution found")

	fs.Float64("epsilon", def.Epsilon, "integrality tolerance")
	fs.Bool("ceiling", !def.FloorFirst, "explore the rounded up branch first")
	fs.String("branch", def.Rule.String(), "branching column: first or random")
	fs.String("order", def.Order.String(), "node order: depth or best")
	fs.Bool("break-at-first", false, "stop at the first integer solution better than --break-value")
	fs.Float64("break-value", 0, "objective value for --break-at-first")
	fs.Float64("obj-bound", def.ObjBound, "known bound on the objective")
	fs.Uint64("seed", 0, "seed for random branching and perturbation")

	fs.Bool("anti-degen", false, "perturb bounds against degeneracy")
	fs.Int("max-pivots", def.MaxPivots, "pivots between reinversions")
	fs.Int("max-iterations", 0, "iteration limit of a single LP, 0 for none")
	fs.Float64("epsb", def.EpsB, "right hand side tolerance")
	fs.Float64("epsel", def.EpsEl, "element tolerance")
	fs.Float64("epsd", def.EpsD, "reduced cost tolerance")
}

func loadConfig(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix("lpsolve")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "read config %s", file)
		}
		klog.V(1).Infof("using config %s", v.ConfigFileUsed())
	}
	return nil
}

func options(v *viper.Viper) (milp.Options, error) {
	opts := milp.DefaultOptions()
	opts.Epsilon = v.GetFloat64("epsilon")
	opts.FloorFirst = !v.GetBool("ceiling")
	opts.BreakAtFirst = v.GetBool("break-at-first")
	opts.BreakValue = v.GetFloat64("break-value")
	opts.ObjBound = v.GetFloat64("obj-bound")
	opts.Seed = v.GetUint64("seed")
	opts.AntiDegen = v.GetBool("anti-degen")
	opts.MaxPivots = v.GetInt("max-pivots")
	opts.MaxIterations = v.GetInt("max-iterations")
	opts.EpsB = v.GetFloat64("epsb")
	opts.EpsEl = v.GetFloat64("epsel")
	opts.EpsD = v.GetFloat64("epsd")

	switch b := v.GetString("branch"); b {
	case "first":
		opts.Rule = milp.FirstFractional
	case "random":
		opts.Rule = milp.RandomFractional
	default:
		return opts, errors.Errorf("unknown branch rule %q", b)
	}
	switch o := v.GetString("order"); o {
	case "depth":
		opts.Order = milp.DepthFirst
	case "best":
		opts.Order = milp.BestFirst
	default:
		return opts, errors.Errorf("unknown node order %q", o)
	}
	return opts, opts.Validate()
}

func run(ctx context.Context, v *viper.Viper, filename string, out io.Writer) error {
	opts, err := options(v)
	if err != nil {
		return err
	}
	r := instance.NewReader(filename)
	r.Fixed = v.GetBool("fixed")
	m, err := r.ReadModel()
	if err != nil {
		return err
	}
	if v.GetBool("print-all") {
		fmt.Fprint(out, m.Format())
	}
	if path := v.GetString("write-lp"); path != "" {
		if err := writeLP(m, path); err != nil {
			return err
		}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	if d := v.GetDuration("timeout"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	start := time.Now()
	res, err := milp.Solve(ctx, m, opts)
	if err != nil {
		return err
	}
	klog.V(1).Infof("solved in %s", time.Since(start))
	return printResult(out, m, res, v.GetBool("print-duals"))
}

func writeLP(m *model.Model, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "write lp")
	}
	if err := m.WriteLP(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write lp %s", path)
	}
	return f.Close()
}
