package client

import "github.com/calcbridge/calcctl/env"

// Convenience methods, one per command. Each builds the action and runs it
// through Step; nothing here carries logic of its own. sheet is optional
// everywhere it appears: "" means the server's current sheet.

func (c *Client) stepWith(command string, params any) (*StepResult, error) {
	action, err := env.NewAction(command, params)
	if err != nil {
		return nil, err
	}
	return c.Step(action)
}

// SetCell sets a cell value.
func (c *Client) SetCell(cell string, value any, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdSetCell, env.SetCellParams{Sheet: sheet, Cell: cell, Value: value})
}

// GetCell reads a cell value into the observation's data field.
func (c *Client) GetCell(cell, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdGetCell, env.GetCellParams{Sheet: sheet, Cell: cell})
}

// SetFormula sets a formula like "=SUM(A1:A10)" in a cell.
func (c *Client) SetFormula(cell, formula, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdSetFormula, env.SetFormulaParams{Sheet: sheet, Cell: cell, Formula: formula})
}

// GetFormula reads a cell's formula into the observation's data field.
func (c *Client) GetFormula(cell, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdGetFormula, env.GetFormulaParams{Sheet: sheet, Cell: cell})
}

// SetRange writes a 2D value matrix anchored at the range's top-left cell.
func (c *Client) SetRange(rangeRef string, values [][]any, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdSetRange, env.SetRangeParams{Sheet: sheet, Range: rangeRef, Values: values})
}

// GetRange reads a rectangular range into the observation's data field.
func (c *Client) GetRange(rangeRef, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdGetRange, env.GetRangeParams{Sheet: sheet, Range: rangeRef})
}

// AddSheet adds a sheet; name may be empty for a generated one.
func (c *Client) AddSheet(name string) (*StepResult, error) {
	return c.stepWith(env.CmdAddSheet, env.AddSheetParams{Name: name})
}

// DeleteSheet removes a sheet by name.
func (c *Client) DeleteSheet(name string) (*StepResult, error) {
	return c.stepWith(env.CmdDeleteSheet, env.DeleteSheetParams{Name: name})
}

// RenameSheet renames a sheet.
func (c *Client) RenameSheet(oldName, newName string) (*StepResult, error) {
	return c.stepWith(env.CmdRenameSheet, env.RenameSheetParams{OldName: oldName, NewName: newName})
}

// CreateSheet replaces the workbook with a fresh blank one.
func (c *Client) CreateSheet() (*StepResult, error) {
	return c.stepWith(env.CmdCreateSheet, nil)
}

// OpenFile opens a workbook on the server.
func (c *Client) OpenFile(path string) (*StepResult, error) {
	return c.stepWith(env.CmdOpenFile, env.FileParams{FilePath: path})
}

// SaveFile saves the workbook to a path on the server.
func (c *Client) SaveFile(path string) (*StepResult, error) {
	return c.stepWith(env.CmdSaveFile, env.FileParams{FilePath: path})
}

// ExportPDF renders the workbook to a PDF on the server.
func (c *Client) ExportPDF(path string) (*StepResult, error) {
	return c.stepWith(env.CmdExportPDF, env.FileParams{FilePath: path})
}

// ExportCSV exports one sheet as CSV on the server.
func (c *Client) ExportCSV(path, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdExportCSV, env.FileParams{FilePath: path, Sheet: sheet})
}

// FormatCell applies formatting options to a cell.
func (c *Client) FormatCell(cell string, options env.FormatOptions, sheet string) (*StepResult, error) {
	return c.stepWith(env.CmdFormatCell, env.FormatCellParams{Sheet: sheet, Cell: cell, FormatOptions: options})
}
