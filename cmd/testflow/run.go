package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/actions"
	"github.com/katonium/testflow/internal/engine"
	"github.com/katonium/testflow/internal/logging"
	"github.com/katonium/testflow/internal/model"
	"github.com/katonium/testflow/internal/report"
)

type runOptions struct {
	TestCasePath string
	Verbose      bool
}

func newRunCmd(root *rootFlags) *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a test case file and report the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = root.verbose
			if err := validateRunOptions(opts); err != nil {
				return err
			}
			return runTestCase(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.TestCasePath, "file", "f", "", "path to a test case YAML file")
	cmd.MarkFlagRequired("file") //nolint:errcheck

	return cmd
}

func runTestCase(cmd *cobra.Command, opts runOptions) error {
	raw, err := os.ReadFile(opts.TestCasePath)
	if err != nil {
		return fmt.Errorf("read test case file: %w", err)
	}

	var tc model.TestCase
	if err := yaml.Unmarshal(raw, &tc); err != nil {
		return fmt.Errorf("parse test case file: %w", err)
	}

	level := "info"
	if opts.Verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level, Human: true, Component: "cli"})
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}

	registry := action.NewRegistry()
	if err := actions.Register(registry); err != nil {
		return fmt.Errorf("register actions: %w", err)
	}

	reporter := report.NewMultiReporter(report.NewLogReporter(logger))

	testCaseID := uuid.NewString()
	execCtx := model.NewExecutionContext(testCaseID, tc.Name)

	success, err := engine.ExecuteTestCase(context.Background(), tc, execCtx, engine.RunOptions{
		Registry: registry,
		Reporter: reporter,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	if !success {
		fmt.Fprintln(cmd.OutOrStdout(), "FAIL")
		os.Exit(1)
	}

	fmt.Fprintln(cmd.OutOrStdout(), "PASS")
	return nil
}
