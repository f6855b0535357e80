package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/katonium/testflow/internal/action"
	"github.com/katonium/testflow/internal/model"
)

// HTTP issues a request built from the step's resolved params: method, url,
// headers, body. No ecosystem HTTP client appears anywhere in the retrieved
// pack, so this is built on net/http directly (see DESIGN.md).
func HTTP() action.Action {
	client := &http.Client{Timeout: 30 * time.Second}

	return action.ActionFunc(func(ctx context.Context, step model.Step) (model.ActionResult, error) {
		method, _ := step.Params["method"].(string)
		if method == "" {
			method = http.MethodGet
		}
		url, _ := step.Params["url"].(string)
		if url == "" {
			return model.Failure("http action requires a \"url\" param", ""), nil
		}

		var body io.Reader
		if raw, ok := step.Params["body"]; ok {
			switch typed := raw.(type) {
			case string:
				body = strings.NewReader(typed)
			default:
				encoded, err := json.Marshal(typed)
				if err != nil {
					return model.Failure(fmt.Sprintf("encode body: %v", err), ""), nil
				}
				body = bytes.NewReader(encoded)
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, body)
		if err != nil {
			return model.Failure(fmt.Sprintf("build request: %v", err), ""), nil
		}

		if headers, ok := step.Params["headers"].(map[string]any); ok {
			for k, v := range headers {
				req.Header.Set(k, fmt.Sprintf("%v", v))
			}
		}

		resp, err := client.Do(req)
		if err != nil {
			return model.Failure(fmt.Sprintf("request failed: %v", err), ""), nil
		}
		defer resp.Body.Close()

		responseBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return model.Failure(fmt.Sprintf("read response: %v", err), ""), nil
		}

		output := map[string]any{
			"statusCode": resp.StatusCode,
			"body":       string(responseBody),
		}
		return model.ActionResult{Success: resp.StatusCode < 400, Output: output}, nil
	})
}
