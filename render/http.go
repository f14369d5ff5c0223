package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zoobzio/pgrestql"
)

// Param is one ordered query-string entry. Duplicate keys are legal and
// preserved in insertion order (spec §4.8).
type Param struct {
	Key   string
	Value string
}

// Request is the HTTP renderer's output (spec §4.8).
type Request struct {
	Method   string
	Path     string
	Params   []Param
	FullPath string
}

// HTTPRenderer renders a Select into a PostgREST HTTP request description.
type HTTPRenderer struct{}

// NewHTTPRenderer constructs the HTTP renderer.
func NewHTTPRenderer() *HTTPRenderer { return &HTTPRenderer{} }

func (HTTPRenderer) Render(sel *pgrestql.Select) (Output, error) {
	req, err := buildHTTPRequest(sel)
	if err != nil {
		return Output{}, err
	}
	return Output{HTTP: req}, nil
}

func buildHTTPRequest(sel *pgrestql.Select) (*Request, error) {
	path := "/" + sel.From

	var params []Param

	if !isBareStar(sel.Targets) {
		selectValue, err := renderTargetList(sel.Targets)
		if err != nil {
			return nil, err
		}
		params = append(params, Param{Key: "select", Value: selectValue})
	}

	filterParams, err := renderHTTPFilter(sel.Filter)
	if err != nil {
		return nil, err
	}
	params = append(params, filterParams...)

	if len(sel.Sorts) > 0 {
		params = append(params, Param{Key: "order", Value: renderHTTPOrder(sel.Sorts)})
	}

	if sel.Limit != nil {
		if sel.Limit.Count != nil {
			params = append(params, Param{Key: "limit", Value: strconv.Itoa(*sel.Limit.Count)})
		}
		if sel.Limit.Offset != nil {
			params = append(params, Param{Key: "offset", Value: strconv.Itoa(*sel.Limit.Offset)})
		}
	}

	return &Request{
		Method:   "GET",
		Path:     path,
		Params:   params,
		FullPath: path + encodeQuery(params),
	}, nil
}

// isBareStar reports whether targets is exactly the implicit "select all"
// projection, which PostgREST omits from the query string entirely (spec §8
// scenario 2) since it's the default.
func isBareStar(targets []pgrestql.Target) bool {
	if len(targets) != 1 {
		return false
	}
	c := targets[0].Column
	return c != nil && c.Column == "*" && c.Alias == "" && c.Cast == ""
}

func renderHTTPOrder(sorts []pgrestql.Sort) string {
	parts := make([]string, 0, len(sorts))
	for _, s := range sorts {
		item := s.Column
		if s.Direction != "" {
			item += "." + string(s.Direction)
		}
		if s.Nulls != "" {
			item += ".nulls" + string(s.Nulls)
		}
		parts = append(parts, item)
	}
	return strings.Join(parts, ",")
}

// renderHTTPFilter lowers a Filter into query parameters. A top-level,
// non-negated "and" is flattened into sibling parameters (spec §4.8); every
// other shape becomes a single param.
func renderHTTPFilter(f pgrestql.Filter) ([]Param, error) {
	if f.IsEmpty() {
		return nil, nil
	}
	if f.Logical != nil && f.Logical.Operator == pgrestql.LogicalAnd && !f.Logical.Negate {
		var params []Param
		for _, child := range f.Logical.Children {
			childParams, err := renderHTTPFilter(child)
			if err != nil {
				return nil, err
			}
			params = append(params, childParams...)
		}
		return params, nil
	}
	key, value, err := renderHTTPFilterNode(f)
	if err != nil {
		return nil, err
	}
	return []Param{{Key: key, Value: value}}, nil
}

func renderHTTPFilterNode(f pgrestql.Filter) (key, value string, err error) {
	switch {
	case f.Column != nil:
		return renderHTTPColumnFilter(f.Column)
	case f.Logical != nil:
		return renderHTTPLogicalFilter(f.Logical)
	default:
		return "", "", pgrestql.NewRenderError("http", "empty filter node")
	}
}

func renderHTTPColumnFilter(c *pgrestql.ColumnFilter) (string, string, error) {
	opValue, err := renderHTTPOperatorValue(c)
	if err != nil {
		return "", "", err
	}
	value := opValue
	if c.Negate {
		value = "not." + value
	}
	return c.Column, value, nil
}

func renderHTTPOperatorValue(c *pgrestql.ColumnFilter) (string, error) {
	switch c.Operator {
	case pgrestql.FilterIn:
		return "in." + formatInList(c.Value), nil
	case pgrestql.FilterIs:
		return "is.null", nil
	case pgrestql.FilterLike, pgrestql.FilterILike:
		return string(c.Operator) + "." + likeToURLSafe(formatScalarValue(c.Value)), nil
	case pgrestql.FilterFts, pgrestql.FilterPlfts, pgrestql.FilterPhfts, pgrestql.FilterWfts:
		op := string(c.Operator)
		if c.Config != "" {
			op += "(" + c.Config + ")"
		}
		return op + "." + formatScalarValue(c.Value), nil
	default:
		return string(c.Operator) + "." + formatScalarValue(c.Value), nil
	}
}

func renderHTTPLogicalFilter(l *pgrestql.LogicalFilter) (string, string, error) {
	key := string(l.Operator)
	if l.Negate {
		key = "not." + key
	}

	children := make([]string, 0, len(l.Children))
	for _, child := range l.Children {
		ck, cv, err := renderHTTPFilterNode(child)
		if err != nil {
			return "", "", err
		}
		if child.Column != nil {
			children = append(children, ck+"."+cv)
		} else {
			children = append(children, ck+cv)
		}
	}
	return key, "(" + strings.Join(children, ",") + ")", nil
}

// urlSafeChars is the whitelist of characters the HTTP renderer leaves
// unencoded (spec §6) — wider than net/url's own unreserved set, because
// PostgREST's filter syntax relies on "(", ")", "," etc. remaining literal
// in the query string.
const urlSafeChars = "*(),:!>-[]"

func isURLSafeByte(b byte) bool {
	if (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') {
		return true
	}
	switch b {
	case '_', '.', '~':
		return true
	}
	return strings.IndexByte(urlSafeChars, b) >= 0
}

func encodeQueryValue(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURLSafeByte(c) {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func encodeQuery(params []Param) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, encodeQueryValue(p.Key)+"="+encodeQueryValue(p.Value))
	}
	return "?" + strings.Join(parts, "&")
}
