package repository

import "strings"

// escapeFormulaValue makes a value safe to embed in a single-quoted
// filterByFormula string literal.
func escapeFormulaValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	return strings.ReplaceAll(value, `'`, `\'`)
}
