// Package resolve implements the Value Resolver from spec.md §4.2: a pure,
// side-effect-free substitution of `{expr}` placeholders in step parameters
// against the evolving ExecutionContext. New code — the teacher has no
// template-resolution concept — but it follows the teacher's preference for
// small, single-purpose files with a narrow exported surface.
package resolve

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/katonium/testflow/internal/model"
)

var placeholderPattern = regexp.MustCompile(`\{[^{}]*\}`)

// Value resolves every `{expr}` placeholder found anywhere within v against
// ctx, returning a deep copy with substitutions applied. v is never
// mutated. Maps, slices, and strings recurse; every other scalar passes
// through unchanged, satisfying idempotency: a value with no remaining
// placeholders resolves to itself.
func Value(v any, ctx *model.ExecutionContext) any {
	switch typed := v.(type) {
	case string:
		return resolveString(typed, ctx)
	case map[string]any:
		out := make(map[string]any, len(typed))
		for k, val := range typed {
			out[k] = Value(val, ctx)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, val := range typed {
			out[i] = Value(val, ctx)
		}
		return out
	default:
		return v
	}
}

// Params resolves every value in a step parameter mapping, returning a new
// mapping. A nil input resolves to nil.
func Params(params map[string]any, ctx *model.ExecutionContext) map[string]any {
	if params == nil {
		return nil
	}
	resolved := Value(params, ctx)
	out, _ := resolved.(map[string]any)
	return out
}

func resolveString(s string, ctx *model.ExecutionContext) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		expr := strings.TrimSpace(match[1 : len(match)-1])
		value, ok := resolveExpr(expr, ctx)
		if !ok {
			return match
		}
		return stringify(value)
	})
}

type pathSegment struct {
	key   string
	index int
	hasIx bool
}

var segmentPattern = regexp.MustCompile(`^([A-Za-z0-9_#-]+)(\[(\d+)\])?$`)

func parseSegment(raw string) (pathSegment, bool) {
	m := segmentPattern.FindStringSubmatch(raw)
	if m == nil {
		return pathSegment{}, false
	}
	seg := pathSegment{key: m[1]}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return pathSegment{}, false
		}
		seg.index = n
		seg.hasIx = true
	}
	return seg, true
}

// resolveExpr walks expr (a dotted/bracketed path) against ctx, returning
// the resolved leaf value and whether resolution succeeded. A false return
// means the caller should leave the placeholder literally unchanged.
func resolveExpr(expr string, ctx *model.ExecutionContext) (any, bool) {
	if expr == "" {
		return nil, false
	}
	parts := strings.Split(expr, ".")

	first, ok := parseSegment(parts[0])
	if !ok {
		return nil, false
	}

	var current any
	switch first.key {
	case "testCaseId":
		current = ctx.TestCaseID
	case "testCaseName":
		current = ctx.TestCaseName
	default:
		result, found := ctx.Result(first.key)
		if !found {
			return nil, false
		}
		if len(parts) == 1 && !first.hasIx {
			// A bare step reference embeds the ActionResult's own JSON
			// encoding, keeping its field order (success, then output).
			if encoded, err := json.Marshal(result); err == nil {
				return string(encoded), true
			}
		}
		current = actionResultToTree(result)
	}

	current, ok = applyIndex(current, first)
	if !ok {
		return nil, false
	}

	for _, raw := range parts[1:] {
		seg, ok := parseSegment(raw)
		if !ok {
			return nil, false
		}
		current, ok = step(current, seg)
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func step(current any, seg pathSegment) (any, bool) {
	mapping, ok := current.(map[string]any)
	if !ok {
		return nil, false
	}
	value, ok := mapping[seg.key]
	if !ok {
		return nil, false
	}
	return applyIndex(value, seg)
}

func applyIndex(value any, seg pathSegment) (any, bool) {
	if !seg.hasIx {
		return value, true
	}
	seq, ok := value.([]any)
	if !ok || seg.index < 0 || seg.index >= len(seq) {
		return nil, false
	}
	return seq[seg.index], true
}

// actionResultToTree converts an ActionResult to the generic map/slice tree
// shape the path walker operates on, matching the JSON encoding referenced
// by spec.md §4.2 ("<stepId> resolves to the JSON-encoded form of that
// step's full ActionResult").
func actionResultToTree(result model.ActionResult) map[string]any {
	encoded, err := json.Marshal(result)
	if err != nil {
		return map[string]any{"success": result.Success, "output": result.Output}
	}
	var tree map[string]any
	if err := json.Unmarshal(encoded, &tree); err != nil {
		return map[string]any{"success": result.Success, "output": result.Output}
	}
	return tree
}

func stringify(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case map[string]any, []any:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return fmt.Sprintf("%v", typed)
		}
		return string(encoded)
	default:
		return fmt.Sprintf("%v", typed)
	}
}
