package actions

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// GitFixture clones a repository into a fixture directory ahead of a test
// case, adapted from the teacher's repo-reconciliation plugin: here there
// is no "check current state first" reconciliation loop, only a clone (or
// reuse-if-already-present) since test fixtures are disposable, not
// long-lived managed state.
func GitFixture() action.Action {
	return action.ActionFunc(func(ctx context.Context, step model.Step) (model.ActionResult, error) {
		url, _ := step.Params["url"].(string)
		if url == "" {
			return model.Failure("git_fixture action requires a \"url\" param", ""), nil
		}
		destination, _ := step.Params["destination"].(string)
		if destination == "" {
			return model.Failure("git_fixture action requires a \"destination\" param", ""), nil
		}
		branch, _ := step.Params["branch"].(string)
		depth, _ := step.Params["depth"].(float64)

		if _, err := os.Stat(destination); err == nil {
			if _, err := git.PlainOpen(destination); err == nil {
				return model.ActionResult{
					Success: true,
					Output:  map[string]any{"destination": destination, "reused": true},
				}, nil
			}
		}

		opts := &git.CloneOptions{URL: url}
		if depth > 0 {
			opts.Depth = int(depth)
		}
		if branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
			opts.SingleBranch = true
		}

		if _, err := git.PlainCloneContext(ctx, destination, false, opts); err != nil {
			return model.Failure(fmt.Sprintf("clone %s: %v", url, err), ""), nil
		}

		return model.ActionResult{
			Success: true,
			Output:  map[string]any{"destination": destination, "reused": false},
		}, nil
	})
}
