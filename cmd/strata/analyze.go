package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/chazu/strata"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Analyze is the sub-command invoked when running "strata analyze".
var Analyze SubCommand

func init() {
	Analyze.Cmd = &cobra.Command{
		Use:   "analyze <scene>",
		Short: "Report bounds, support surfaces and containment for every body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.OutOrStdout(), args[0])
		},
	}
	Analyze.EnvPrefix = "STRATA_ANALYZE"
	Analyze.Cmd.Flags().String("format", "yaml", "Output format, one of [yaml, json].")
}

func runAnalyze(out io.Writer, scene string) error {
	conf := Analyze.Conf
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
	report := a.Analyze(source)
	if err := writeReport(out, conf.GetString("format"), report); err != nil {
		return err
	}
	if len(report.Errors) > 0 {
		return errors.Errorf("%s: %d evaluation error(s)", scene, len(report.Errors))
	}
	return nil
}

func writeReport(out io.Writer, format string, report strata.Report) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return errors.Wrap(err, "encoding report")
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(report), "encoding report")
	}
	return fmt.Errorf("unknown format %q", format)
}
