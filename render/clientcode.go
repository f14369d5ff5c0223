package render

import (
	"fmt"
	"strings"

	"github.com/zoobzio/pgrestql"
)

// ClientCodeRenderer renders a Select into source text invoking a
// postgrest-js-shaped fluent client (spec §4.8-§4.9).
type ClientCodeRenderer struct{}

// NewClientCodeRenderer constructs the client-code renderer.
func NewClientCodeRenderer() *ClientCodeRenderer { return &ClientCodeRenderer{} }

func (ClientCodeRenderer) Render(sel *pgrestql.Select) (Output, error) {
	code, err := buildClientCode(sel)
	if err != nil {
		return Output{}, err
	}
	return Output{Code: code}, nil
}

func buildClientCode(sel *pgrestql.Select) (string, error) {
	lines := []string{fmt.Sprintf(".from(%s)", jsString(sel.From))}

	if !isBareStar(sel.Targets) {
		selectValue, err := renderTargetList(sel.Targets)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf(".select(%s)", jsString(selectValue)))
	}

	filterCalls, err := renderClientCodeFilters(sel.Filter)
	if err != nil {
		return "", err
	}
	lines = append(lines, filterCalls...)

	lines = append(lines, renderClientCodeOrder(sel.Sorts)...)

	if sel.Limit != nil {
		switch {
		case sel.Limit.Count != nil && sel.Limit.Offset != nil:
			from := *sel.Limit.Offset
			to := from + *sel.Limit.Count - 1
			lines = append(lines, fmt.Sprintf(".range(%d, %d)", from, to))
		case sel.Limit.Count != nil:
			lines = append(lines, fmt.Sprintf(".limit(%d)", *sel.Limit.Count))
		case sel.Limit.Offset != nil:
			return "", pgrestql.NewRenderError("clientcode", "offset without a count has no equivalent range() call")
		}
	}

	var b strings.Builder
	b.WriteString("supabase\n")
	for _, line := range lines {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// renderClientCodeFilters flattens a non-negated top-level "and" into
// sibling calls, same as the HTTP renderer does with sibling params.
func renderClientCodeFilters(f pgrestql.Filter) ([]string, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	if f.Logical != nil && f.Logical.Operator == pgrestql.LogicalAnd && !f.Logical.Negate {
		var calls []string
		for _, child := range f.Logical.Children {
			childCalls, err := renderClientCodeFilters(child)
			if err != nil {
				return nil, err
			}
			calls = append(calls, childCalls...)
		}
		return calls, nil
	}
	call, err := renderClientCodeFilterNode(f)
	if err != nil {
		return nil, err
	}
	return []string{call}, nil
}

func renderClientCodeFilterNode(f pgrestql.Filter) (string, error) {
	switch {
	case f.Column != nil:
		return renderClientCodeColumnFilter(f.Column)
	case f.Logical != nil:
		// The target client has no negated-logical or nested-logical call;
		// both fall back to the raw filter-syntax escape hatch (spec §4.8).
		key, value, err := renderHTTPFilterNode(f)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(".or(%s)", jsString(key+value)), nil
	default:
		return "", pgrestql.NewRenderError("clientcode", "empty filter node")
	}
}

func renderClientCodeColumnFilter(c *pgrestql.ColumnFilter) (string, error) {
	if c.Negate {
		return fmt.Sprintf(".not(%s, %s, %s)", jsString(c.Column), jsString(string(c.Operator)), jsFilterValue(c)), nil
	}
	switch c.Operator {
	case pgrestql.FilterIn:
		return fmt.Sprintf(".in(%s, %s)", jsString(c.Column), jsArray(c.Value)), nil
	case pgrestql.FilterIs:
		return fmt.Sprintf(".is(%s, null)", jsString(c.Column)), nil
	case pgrestql.FilterLike, pgrestql.FilterILike:
		return fmt.Sprintf(".%s(%s, %s)", c.Operator, jsString(c.Column), jsString(likeToURLSafe(formatScalarValue(c.Value)))), nil
	case pgrestql.FilterFts, pgrestql.FilterPlfts, pgrestql.FilterPhfts, pgrestql.FilterWfts:
		return renderClientCodeTextSearch(c)
	default:
		return fmt.Sprintf(".%s(%s, %s)", c.Operator, jsString(c.Column), jsFilterValue(c)), nil
	}
}

func renderClientCodeTextSearch(c *pgrestql.ColumnFilter) (string, error) {
	opts := []string{fmt.Sprintf("type: %s", jsString(ftsConfigName[c.Operator]))}
	if c.Config != "" {
		opts = append(opts, fmt.Sprintf("config: %s", jsString(c.Config)))
	}
	return fmt.Sprintf(".textSearch(%s, %s, { %s })", jsString(c.Column), jsString(formatScalarValue(c.Value)), strings.Join(opts, ", ")), nil
}

func renderClientCodeOrder(sorts []pgrestql.Sort) []string {
	calls := make([]string, 0, len(sorts))
	for _, s := range sorts {
		var opts []string
		if s.Direction != "" {
			opts = append(opts, fmt.Sprintf("ascending: %t", s.Direction == pgrestql.SortAsc))
		}
		if s.Nulls != "" {
			opts = append(opts, fmt.Sprintf("nullsFirst: %t", s.Nulls == pgrestql.NullsFirst))
		}
		if len(opts) == 0 {
			calls = append(calls, fmt.Sprintf(".order(%s)", jsString(s.Column)))
		} else {
			calls = append(calls, fmt.Sprintf(".order(%s, { %s })", jsString(s.Column), strings.Join(opts, ", ")))
		}
	}
	return calls
}

func jsFilterValue(c *pgrestql.ColumnFilter) string {
	switch c.Value.Kind {
	case pgrestql.ValueNumber:
		return formatScalarValue(c.Value)
	case pgrestql.ValueNull:
		return "null"
	default:
		return jsString(formatScalarValue(c.Value))
	}
}

func jsArray(v pgrestql.FilterValue) string {
	parts := make([]string, 0, len(v.List))
	for _, item := range v.List {
		if item.Kind == pgrestql.ValueNumber {
			parts = append(parts, formatScalarValue(item))
		} else {
			parts = append(parts, jsString(formatScalarValue(item)))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func jsString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "\\'") + "'"
}
