package trigger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Fadil369/brainsait-unified-ecosystem-sub000/pkg/api"
)

// EventDoc is an event rendered once to JSON so that condition field paths
// can be resolved without repeated reflection
type EventDoc struct {
	raw []byte
}

// NewEventDoc renders the event for path lookup
func NewEventDoc(ev *api.Event) (*EventDoc, error) {
	raw, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrConditionEval, err)
	}
	return &EventDoc{raw: raw}, nil
}

// NewPayloadDoc renders a bare payload for path lookup, used when step and
// decision conditions are checked against an execution context
func NewPayloadDoc(p api.Payload) (*EventDoc, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", api.ErrConditionEval, err)
	}
	return &EventDoc{raw: raw}, nil
}

// Lookup resolves a field path against the event document. Bare paths that
// do not name a top-level event field fall back to the payload.
func (d *EventDoc) Lookup(path string) gjson.Result {
	res := gjson.GetBytes(d.raw, path)
	if res.Exists() {
		return res
	}
	return gjson.GetBytes(d.raw, "payload."+path)
}

// EvalRule evaluates the rule's conditions under its logical operator
func EvalRule(doc *EventDoc, rule *api.Rule, now time.Time) bool {
	switch rule.Operator {
	case api.LogicalAnd, "":
		for i := range rule.Conditions {
			if !EvalCondition(doc, &rule.Conditions[i], now) {
				return false
			}
		}
		return true
	case api.LogicalOr:
		for i := range rule.Conditions {
			if EvalCondition(doc, &rule.Conditions[i], now) {
				return true
			}
		}
		return false
	case api.LogicalNot:
		for i := range rule.Conditions {
			if EvalCondition(doc, &rule.Conditions[i], now) {
				return false
			}
		}
		return true
	default:
		slog.Warn("Unknown logical operator",
			slog.String("operator", string(rule.Operator)))
		return false
	}
}

// EvalCondition evaluates a single condition against the event document.
// Unknown operators and evaluation errors are treated as false and logged,
// never raised, so a bad condition cannot destabilize matching.
func EvalCondition(doc *EventDoc, c *api.Condition, now time.Time) bool {
	res := doc.Lookup(c.FieldPath)

	switch c.Operator {
	case api.OpEquals:
		return equals(res, c)
	case api.OpNotEquals:
		return res.Exists() && !equals(res, c)
	case api.OpIn:
		return membership(res, c)
	case api.OpContains:
		return stringCompare(res, c, strings.Contains)
	case api.OpStartsWith:
		return stringCompare(res, c, strings.HasPrefix)
	case api.OpEndsWith:
		return stringCompare(res, c, strings.HasSuffix)
	case api.OpMatches:
		return regexMatch(res, c)
	case api.OpGt, api.OpGte, api.OpLt, api.OpLte:
		return numericCompare(res, c)
	case api.OpBetween:
		return numericBetween(res, c)
	case api.OpBefore, api.OpAfter, api.OpWithinLast:
		return timeCompare(res, c, now)
	default:
		slog.Warn("Unknown condition operator",
			slog.String("operator", string(c.Operator)),
			slog.String("field_path", c.FieldPath))
		return false
	}
}

func equals(res gjson.Result, c *api.Condition) bool {
	if !res.Exists() {
		return false
	}
	switch want := c.Value.(type) {
	case bool:
		return res.IsBool() && res.Bool() == want
	case string:
		if c.CaseSensitive {
			return res.String() == want
		}
		return strings.EqualFold(res.String(), want)
	case nil:
		return res.Type == gjson.Null
	default:
		if want, ok := toFloat(c.Value); ok {
			got, ok := resultFloat(res)
			return ok && got == want
		}
		return false
	}
}

func membership(res gjson.Result, c *api.Condition) bool {
	set, ok := c.Value.([]any)
	if !ok {
		logEvalError(c, "in operator requires a list value")
		return false
	}
	for _, item := range set {
		member := *c
		member.Value = item
		if equals(res, &member) {
			return true
		}
	}
	return false
}

func stringCompare(
	res gjson.Result, c *api.Condition, cmp func(string, string) bool,
) bool {
	want, ok := c.Value.(string)
	if !ok || !res.Exists() {
		return false
	}
	got := res.String()
	if !c.CaseSensitive {
		got = strings.ToLower(got)
		want = strings.ToLower(want)
	}
	return cmp(got, want)
}

func regexMatch(res gjson.Result, c *api.Condition) bool {
	pattern, ok := c.Value.(string)
	if !ok || !res.Exists() {
		return false
	}
	if !c.CaseSensitive {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		logEvalError(c, err.Error())
		return false
	}
	return re.MatchString(res.String())
}

func numericCompare(res gjson.Result, c *api.Condition) bool {
	got, ok := resultFloat(res)
	if !ok {
		return false
	}
	want, ok := toFloat(c.Value)
	if !ok {
		logEvalError(c, "numeric operator requires a numeric value")
		return false
	}
	switch c.Operator {
	case api.OpGt:
		return got > want
	case api.OpGte:
		return got >= want
	case api.OpLt:
		return got < want
	default:
		return got <= want
	}
}

func numericBetween(res gjson.Result, c *api.Condition) bool {
	bounds, ok := c.Value.([]any)
	if !ok || len(bounds) != 2 {
		logEvalError(c, "between operator requires [min, max]")
		return false
	}
	lo, okLo := toFloat(bounds[0])
	hi, okHi := toFloat(bounds[1])
	if !okLo || !okHi {
		logEvalError(c, "between bounds must be numeric")
		return false
	}
	got, ok := resultFloat(res)
	if !ok {
		return false
	}
	return got >= lo && got <= hi
}

func timeCompare(res gjson.Result, c *api.Condition, now time.Time) bool {
	if !res.Exists() {
		return false
	}
	got, err := time.Parse(time.RFC3339, res.String())
	if err != nil {
		logEvalError(c, err.Error())
		return false
	}

	if c.Operator == api.OpWithinLast {
		dur, ok := parseDuration(c.Value)
		if !ok {
			logEvalError(c, "within_last requires a duration value")
			return false
		}
		return !got.Before(now.Add(-dur)) && !got.After(now)
	}

	want, ok := parseTimeValue(c.Value)
	if !ok {
		logEvalError(c, "time operator requires an RFC3339 value")
		return false
	}
	if c.Operator == api.OpBefore {
		return got.Before(want)
	}
	return got.After(want)
}

func parseTimeValue(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		t, err := time.Parse(time.RFC3339, val)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

func parseDuration(v any) (time.Duration, bool) {
	switch val := v.(type) {
	case time.Duration:
		return val, true
	case string:
		d, err := time.ParseDuration(val)
		return d, err == nil
	default:
		if f, ok := toFloat(v); ok {
			return time.Duration(f) * time.Minute, true
		}
		return 0, false
	}
}

func resultFloat(res gjson.Result) (float64, bool) {
	if res.Type != gjson.Number {
		return 0, false
	}
	return res.Float(), true
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func logEvalError(c *api.Condition, detail string) {
	slog.Warn("Condition evaluation error",
		slog.String("field_path", c.FieldPath),
		slog.String("operator", string(c.Operator)),
		slog.String("detail", detail))
}
