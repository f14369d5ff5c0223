package render

import (
	"strconv"
	"strings"

	"github.com/zoobzio/pgrestql"
)

// renderTargetList serializes targets using PostgREST's target-list syntax
// (spec §6): the same string feeds both the HTTP renderer's select= param
// and the client-code renderer's select(...) argument.
func renderTargetList(targets []pgrestql.Target) (string, error) {
	parts := make([]string, 0, len(targets))
	for _, t := range targets {
		part, err := renderTarget(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ","), nil
}

func renderTarget(t pgrestql.Target) (string, error) {
	switch {
	case t.Column != nil:
		return renderColumnTarget(t.Column), nil
	case t.Aggregate != nil:
		return renderAggregateTarget(t.Aggregate), nil
	case t.Embedded != nil:
		return renderEmbeddedTarget(t.Embedded)
	default:
		return "", pgrestql.NewRenderError("target list", "empty target")
	}
}

func renderColumnTarget(c *pgrestql.ColumnTarget) string {
	text := c.Column
	if c.Cast != "" {
		text += "::" + c.Cast
	}
	if c.Alias != "" {
		text = c.Alias + ":" + text
	}
	return text
}

func renderAggregateTarget(a *pgrestql.AggregateTarget) string {
	var call string
	if a.Column == "" {
		call = "count()"
	} else {
		col := a.Column
		if a.InputCast != "" {
			col += "::" + a.InputCast
		}
		call = col + "." + string(a.FunctionName) + "()"
	}
	if a.OutputCast != "" {
		call += "::" + a.OutputCast
	}
	if a.Alias != "" {
		call = a.Alias + ":" + call
	}
	return call
}

func renderEmbeddedTarget(e *pgrestql.EmbeddedTarget) (string, error) {
	children, err := renderTargetList(e.Targets)
	if err != nil {
		return "", err
	}

	name := e.Relation
	if e.JoinType == pgrestql.JoinInner {
		name += "!inner"
	}

	if e.Flatten {
		// Spread embedding: "...relation(...)". PostgREST's spread syntax
		// disallows aliases (spec §6), so any SQL alias is dropped here.
		return "..." + name + "(" + children + ")", nil
	}
	if e.Alias != "" {
		return e.Alias + ":" + name + "(" + children + ")", nil
	}
	return name + "(" + children + ")", nil
}

// formatScalarValue renders a string|number FilterValue for use as a query
// value or a client-code call argument.
func formatScalarValue(v pgrestql.FilterValue) string {
	switch v.Kind {
	case pgrestql.ValueString:
		return v.String
	case pgrestql.ValueNumber:
		if v.IsInt {
			return strconv.FormatInt(int64(v.Number), 10)
		}
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	default:
		return ""
	}
}

// formatInList renders an IN filter's value list as "(a,b,c)", double-quoting
// any element containing a comma (spec §6).
func formatInList(v pgrestql.FilterValue) string {
	parts := make([]string, 0, len(v.List))
	for _, item := range v.List {
		s := formatScalarValue(item)
		if strings.Contains(s, ",") {
			s = `"` + s + `"`
		}
		parts = append(parts, s)
	}
	return "(" + strings.Join(parts, ",") + ")"
}

// likeToURLSafe translates "%" to "*", PostgREST's URL-safe LIKE/ILIKE
// wildcard (spec §6).
func likeToURLSafe(pattern string) string {
	return strings.ReplaceAll(pattern, "%", "*")
}

var ftsConfigName = map[pgrestql.FilterOperator]string{
	pgrestql.FilterFts:   "default",
	pgrestql.FilterPlfts: "plain",
	pgrestql.FilterPhfts: "phrase",
	pgrestql.FilterWfts:  "websearch",
}
