package pgrestql

import "strings"

// parserHints maps substrings of known libpg_query complaints to an
// actionable remediation hint. Matching is substring-based since the
// upstream parser interpolates the offending token into the message.
var parserHints = []struct {
	substr string
	hint   string
}{
	{`syntax error at or near "from"`, "Did you leave a trailing comma in the select target list?"},
	{`syntax error at or near "where"`, "Do you have an incomplete join in the FROM clause?"},
	{`syntax error at or near "group"`, "Did you leave a trailing comma before GROUP BY?"},
	{`syntax error at or near "order"`, "Did you leave a trailing comma before ORDER BY?"},
	{`syntax error at or near "limit"`, "Did you leave a trailing comma before LIMIT?"},
}

func hintForParsingMessage(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range parserHints {
		if strings.Contains(lower, entry.substr) {
			return entry.hint
		}
	}
	return ""
}
