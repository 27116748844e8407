package internal

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// cellRefRe matches a cell reference like A1, $B$2, AA100
var cellRefRe = regexp.MustCompile(`^\$?([A-Z]+)\$?(\d+)$`)

// ParseRange parses a range like "A1:C3", "B2", or "Sheet1!A1:C3" and
// returns (sheet, startRow, startCol, endRow, endCol) in 1-indexed form.
// The sheet prefix is optional; sheet is "" when absent. Actions carry the
// sheet name in a separate parameter, so bare ranges are the common case.
func ParseRange(address string) (sheet string, startRow, startCol, endRow, endCol int, err error) {
	rangePart := address
	if sheetPart, rest, hasSheet := strings.Cut(address, "!"); hasSheet {
		sheet = strings.Trim(sheetPart, "'")
		rangePart = rest
	}

	// Split range into from:to
	fromRef, toRef, hasColon := strings.Cut(rangePart, ":")
	if !hasColon {
		toRef = fromRef // single cell
	}

	startCol, startRow, err = ParseCell(fromRef)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid start of range %q: %w", fromRef, err)
	}
	endCol, endRow, err = ParseCell(toRef)
	if err != nil {
		return "", 0, 0, 0, 0, fmt.Errorf("invalid end of range %q: %w", toRef, err)
	}

	// Normalize order
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startCol > endCol {
		startCol, endCol = endCol, startCol
	}

	return sheet, startRow, startCol, endRow, endCol, nil
}

// ParseCell parses a single cell reference like "B2" or "$B$2" and returns
// (col, row) in 1-indexed form.
func ParseCell(ref string) (col, row int, err error) {
	ref = strings.ReplaceAll(ref, "$", "")
	m := cellRefRe.FindStringSubmatch(strings.ToUpper(ref))
	if m == nil {
		return 0, 0, fmt.Errorf("invalid cell reference %q", ref)
	}
	col = letterToCol(m[1])
	row, _ = strconv.Atoi(m[2])
	return col, row, nil
}

// CellName builds a cell reference like "B2" from 1-indexed coordinates.
func CellName(col, row int) string {
	return ColToLetter(col) + strconv.Itoa(row)
}

// ColToLetter converts a 1-indexed column number to spreadsheet letter(s)
func ColToLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}

// FormatRange builds a range string like "A1:Z50" from 1-indexed bounds.
func FormatRange(startRow, startCol, endRow, endCol int) string {
	from := CellName(startCol, startRow)
	to := CellName(endCol, endRow)
	if from == to {
		return from
	}
	return from + ":" + to
}

func letterToCol(letters string) int {
	col := 0
	for _, c := range letters {
		col = col*26 + int(c-'A'+1)
	}
	return col
}
