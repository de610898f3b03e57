package common

import (
	"regexp"
	"strings"
)

var (
	commentRegex = regexp.MustCompile(`(?m)^\s*--.*$`)
	stringRegex  = regexp.MustCompile(`'(?:[^']|'')*'|"(?:[^"]|"")*"|` + "`(?:[^`]|``)*`")
)

// ParseSQLStatements splits sql on semicolons that are not inside a quoted
// string or identifier.
func ParseSQLStatements(sql string) []string {
	sql = commentRegex.ReplaceAllString(sql, "")

	stringPositions := make(map[int]bool)
	for _, match := range stringRegex.FindAllStringIndex(sql, -1) {
		for i := match[0]; i < match[1]; i++ {
			stringPositions[i] = true
		}
	}

	estimatedStmts := strings.Count(sql, ";") + 1
	statements := make([]string, 0, estimatedStmts)

	var currentStatement strings.Builder
	currentStatement.Grow(len(sql) / estimatedStmts)

	for i, char := range sql {
		if char == ';' && !stringPositions[i] {
			if stmt := strings.TrimSpace(currentStatement.String()); stmt != "" {
				statements = append(statements, stmt)
			}
			currentStatement.Reset()
		} else {
			currentStatement.WriteRune(char)
		}
	}

	if stmt := strings.TrimSpace(currentStatement.String()); stmt != "" {
		statements = append(statements, stmt)
	}

	return statements
}
