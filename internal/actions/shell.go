package actions

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// Shell runs the step's resolved "command" param through the host shell,
// adapted from the teacher's command plugin's shell-detection (bash, then
// sh, then cmd on Windows) but dropped down to a single run — there is no
// separate check/apply/verify split here, only "run it and report".
func Shell() action.Action {
	return action.ActionFunc(func(ctx context.Context, step model.Step) (model.ActionResult, error) {
		command, _ := step.Params["command"].(string)
		if command == "" {
			return model.Failure("shell action requires a \"command\" param", ""), nil
		}
		workDir, _ := step.Params["workDir"].(string)

		shell, shellArgs, err := determineShell()
		if err != nil {
			return model.Failure(err.Error(), ""), nil
		}

		args := append(shellArgs, command)
		cmd := exec.CommandContext(ctx, shell, args...)
		cmd.Env = os.Environ()
		if workDir != "" {
			cmd.Dir = workDir
		}

		var stdout, stderr bytes.Buffer
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr

		runErr := cmd.Run()
		output := map[string]any{"stdout": stdout.String(), "stderr": stderr.String()}

		if runErr != nil {
			var exitErr *exec.ExitError
			if errors.As(runErr, &exitErr) {
				output["exitCode"] = exitErr.ExitCode()
			}
			return model.ActionResult{Success: false, Output: output}, nil
		}

		output["exitCode"] = 0
		return model.ActionResult{Success: true, Output: output}, nil
	})
}

func determineShell() (string, []string, error) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}
	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}
	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}
	return "", nil, fmt.Errorf("shell action: no suitable shell found")
}
