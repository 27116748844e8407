package cmd

import (
	"strconv"
	"strings"
)

// parseValue turns a CLI argument into a typed cell value.
// Number, then bool, then null (clears the cell), otherwise string.
func parseValue(arg string) any {
	if f, err := strconv.ParseFloat(arg, 64); err == nil {
		return f
	}
	switch strings.ToLower(arg) {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	return arg
}
