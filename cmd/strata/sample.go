package main

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/chazu/strata/pkg/views"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Sample is the sub-command invoked when running "strata sample".
var Sample SubCommand

func init() {
	Sample.Cmd = &cobra.Command{
		Use:   "sample <scene>",
		Short: "Sample placement points on top of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSample(cmd.OutOrStdout(), args[0])
		},
	}
	Sample.EnvPrefix = "STRATA_SAMPLE"
	flags := Sample.Cmd.Flags()
	flags.String("table", "", "Body to sample on. Defaults to the first table in the scene.")
	flags.IntP("count", "n", 10, "Number of points.")
	flags.Int64("seed", 1, "Random seed.")
}

func runSample(out io.Writer, scene string) error {
	conf := Sample.Conf
	logger, err := newLogger(conf)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	a, err := newAnalyzer(conf, logger)
	if err != nil {
		return err
	}
	source, err := readScene(scene)
	if err != nil {
		return err
	}
	w, evalErrs, err := a.Evaluate(source)
	if err != nil {
		return err
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			fmt.Fprintln(out, e.Error())
		}
		return errors.Errorf("%s: %d evaluation error(s)", scene, len(evalErrs))
	}

	name := conf.GetString("table")
	var table *views.Table
	for _, v := range views.Annotate(w, a.Extractor()) {
		t, ok := v.(*views.Table)
		if ok && (name == "" || t.Name() == name) {
			table = t
			break
		}
	}
	if table == nil && name != "" {
		if b := w.Body(name); b != nil {
			table = views.NewTable(b, a.Extractor())
		}
	}
	if table == nil {
		return errors.Errorf("%s: no table to sample on", scene)
	}

	rng := rand.New(rand.NewSource(conf.GetInt64("seed")))
	points, err := table.PointsOnTable(conf.GetInt("count"), rng)
	if err != nil {
		return err
	}
	logger.Info("sampled table", zap.String("table", table.Name()), zap.Int("points", len(points)))
	for _, p := range points {
		fmt.Fprintf(out, "%s %.4f %.4f %.4f\n", p.Frame.Name(), p.X, p.Y, p.Z)
	}
	return nil
}
