package schema

import (
	"regexp"
)

// Compiled once; parsing runs on every generate.
var (
	tableRegex = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:"(\w+)"|` + "`" + `(\w+)` + "`" + `|(\w+))\s*\(`)
	alterRegex = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+(?:ONLY\s+)?(?:"(\w+)"|` + "`" + `(\w+)` + "`" + `|(\w+))\s+ADD\s+(.*)$`)

	createTableStmtRegex = regexp.MustCompile(`(?i)^\s*CREATE\s+TABLE`)
	alterTableStmtRegex  = regexp.MustCompile(`(?i)^\s*ALTER\s+TABLE`)
	tableConstraintRegex = regexp.MustCompile(`(?i)^\s*(PRIMARY\s+KEY|FOREIGN\s+KEY|UNIQUE|CHECK|CONSTRAINT|INDEX|KEY|FULLTEXT)(\s|\()`)

	fkRegex         = regexp.MustCompile(`(?i)FOREIGN\s+KEY\s*\(([^)]+)\)\s*REFERENCES\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*\(([^)]+)\)`)
	referencesRegex = regexp.MustCompile(`(?i)REFERENCES\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s*(?:\(\s*["` + "`" + `]?(\w+)["` + "`" + `]?\s*\))?`)
	onDeleteRegex   = regexp.MustCompile(`(?i)ON\s+DELETE\s+(CASCADE|SET\s+NULL|SET\s+DEFAULT|RESTRICT|NO\s+ACTION)`)
	primaryKeyRegex = regexp.MustCompile(`(?i)PRIMARY\s+KEY\s*\(([^)]+)\)`)
	defaultRegex    = regexp.MustCompile(`(?i)\bDEFAULT\s+('[^']*'|\([^)]*\)|[^,\s]+)`)

	commentRegex    = regexp.MustCompile(`--.*|/\*[\s\S]*?\*/`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)
