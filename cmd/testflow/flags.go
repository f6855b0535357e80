package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func validateRunOptions(opts runOptions) error {
	if strings.TrimSpace(opts.TestCasePath) == "" {
		return fmt.Errorf("test case file is required")
	}

	abs, err := filepath.Abs(opts.TestCasePath)
	if err != nil {
		return fmt.Errorf("resolve test case path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("test case file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("test case path %s is a directory", abs)
	}

	return nil
}
