package env

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/calcbridge/calcctl/bridge"
)

// handlerFunc executes one command against the environment. Handlers
// never return a Go error: every failure becomes a failure observation.
type handlerFunc func(ctx context.Context, e *Environment, raw json.RawMessage) Observation

// registry is the fixed command table. It is never mutated after init.
var registry = map[string]handlerFunc{
	CmdSetCell:     execSetCell,
	CmdGetCell:     execGetCell,
	CmdSetFormula:  execSetFormula,
	CmdGetFormula:  execGetFormula,
	CmdSetRange:    execSetRange,
	CmdGetRange:    execGetRange,
	CmdAddSheet:    execAddSheet,
	CmdDeleteSheet: execDeleteSheet,
	CmdRenameSheet: execRenameSheet,
	CmdCreateSheet: execCreateSheet,
	CmdOpenFile:    execOpenFile,
	CmdSaveFile:    execSaveFile,
	CmdExportPDF:   execExportPDF,
	CmdExportCSV:   execExportCSV,
	CmdFormatCell:  execFormatCell,
}

// Commands returns the supported command names. Order is not stable;
// callers sort if they need determinism.
func Commands() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}

// dispatch maps an action onto exactly one bridge call. The caller holds
// the environment lock.
func dispatch(ctx context.Context, e *Environment, action Action) Observation {
	handler, ok := registry[action.Command]
	if !ok {
		return failure(
			fmt.Sprintf("Unknown command: %s", action.Command),
			fmt.Sprintf("command %q is not supported", action.Command),
		)
	}
	return handler(ctx, e, action.Parameters)
}

func execSetCell(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p SetCellParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error setting cell: "+err.Error(), err.Error())
	}
	if p.Cell == "" {
		return failure("No cell specified", "cell parameter is required")
	}
	sheet := e.sheetOr(p.Sheet)
	if err := e.bridge.SetCell(ctx, sheet, p.Cell, p.Value); err != nil {
		return failure("Error setting cell: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Cell %s set to %v", p.Cell, p.Value),
		nil, sheet, nil, "", "")
}

func execGetCell(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p GetCellParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error getting cell: "+err.Error(), err.Error())
	}
	if p.Cell == "" {
		return failure("No cell specified", "cell parameter is required")
	}
	sheet := e.sheetOr(p.Sheet)
	value, err := e.bridge.GetCell(ctx, sheet, p.Cell)
	if err != nil {
		return failure("Error getting cell: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Retrieved value from cell %s", p.Cell),
		value, sheet, nil, "", "")
}

func execSetFormula(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p SetFormulaParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error setting formula: "+err.Error(), err.Error())
	}
	if p.Cell == "" || p.Formula == "" {
		return failure("Cell and formula required", "cell and formula parameters are required")
	}
	sheet := e.sheetOr(p.Sheet)
	if err := e.bridge.SetFormula(ctx, sheet, p.Cell, p.Formula); err != nil {
		return failure("Error setting formula: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Formula set in cell %s: %s", p.Cell, p.Formula),
		nil, sheet, nil, "", "")
}

func execGetFormula(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p GetFormulaParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error getting formula: "+err.Error(), err.Error())
	}
	if p.Cell == "" {
		return failure("No cell specified", "cell parameter is required")
	}
	sheet := e.sheetOr(p.Sheet)
	formula, err := e.bridge.GetFormula(ctx, sheet, p.Cell)
	if err != nil {
		return failure("Error getting formula: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Retrieved formula from cell %s", p.Cell),
		formula, sheet, nil, "", "")
}

func execSetRange(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p SetRangeParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error setting range: "+err.Error(), err.Error())
	}
	if p.Range == "" || len(p.Values) == 0 {
		return failure("Range and values required", "range and values parameters are required")
	}
	sheet := e.sheetOr(p.Sheet)
	if err := e.bridge.SetRange(ctx, sheet, p.Range, p.Values); err != nil {
		return failure("Error setting range: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Range %s set successfully.", p.Range),
		nil, sheet, nil, "", "")
}

func execGetRange(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p GetRangeParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error getting range: "+err.Error(), err.Error())
	}
	if p.Range == "" {
		return failure("No range specified", "range parameter is required")
	}
	sheet := e.sheetOr(p.Sheet)
	values, err := e.bridge.GetRange(ctx, sheet, p.Range)
	if err != nil {
		return failure("Error getting range: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Retrieved data from range %s", p.Range),
		values, sheet, nil, "", "")
}

func execAddSheet(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p AddSheetParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error adding sheet: "+err.Error(), err.Error())
	}
	name := p.Name
	if name == "" {
		names, err := e.bridge.SheetNames(ctx)
		if err != nil {
			return failure("Error adding sheet: "+err.Error(), err.Error())
		}
		name = fmt.Sprintf("Sheet%d", len(names)+1)
	}
	if err := e.bridge.AddSheet(ctx, name); err != nil {
		return failure("Error adding sheet: "+err.Error(), err.Error())
	}
	e.currentSheet = name
	return BuildObservation(true,
		fmt.Sprintf("Sheet '%s' added successfully", name),
		nil, name, e.sheetList(ctx), "", "")
}

func execDeleteSheet(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p DeleteSheetParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error deleting sheet: "+err.Error(), err.Error())
	}
	if p.Name == "" {
		return failure("No sheet name specified", "name parameter is required")
	}
	if err := e.bridge.DeleteSheet(ctx, p.Name); err != nil {
		return failure("Error deleting sheet: "+err.Error(), err.Error())
	}
	names := e.sheetList(ctx)
	if e.currentSheet == p.Name && len(names) > 0 {
		e.currentSheet = names[0]
	}
	return BuildObservation(true,
		fmt.Sprintf("Sheet '%s' deleted successfully", p.Name),
		nil, e.currentSheet, names, "", "")
}

func execRenameSheet(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p RenameSheetParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error renaming sheet: "+err.Error(), err.Error())
	}
	if p.OldName == "" || p.NewName == "" {
		return failure("Old and new names required", "old_name and new_name parameters are required")
	}
	if err := e.bridge.RenameSheet(ctx, p.OldName, p.NewName); err != nil {
		return failure("Error renaming sheet: "+err.Error(), err.Error())
	}
	if e.currentSheet == p.OldName {
		e.currentSheet = p.NewName
	}
	return BuildObservation(true,
		fmt.Sprintf("Sheet renamed from '%s' to '%s'", p.OldName, p.NewName),
		nil, e.currentSheet, e.sheetList(ctx), "", "")
}

func execCreateSheet(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	if err := e.bridge.NewDocument(ctx); err != nil {
		return failure("Error creating spreadsheet: "+err.Error(), err.Error())
	}
	names := e.sheetList(ctx)
	if len(names) > 0 {
		e.currentSheet = names[0]
	}
	e.filePath = ""
	return BuildObservation(true, "New spreadsheet created",
		nil, e.currentSheet, names, "", "")
}

func execOpenFile(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p FileParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error opening file: "+err.Error(), err.Error())
	}
	if p.FilePath == "" {
		return failure("No file path provided", "file_path parameter is required")
	}
	if err := e.bridge.Open(ctx, p.FilePath); err != nil {
		return failure("Error opening file: "+err.Error(), err.Error())
	}
	names := e.sheetList(ctx)
	if len(names) > 0 {
		e.currentSheet = names[0]
	}
	e.filePath = p.FilePath
	return BuildObservation(true,
		fmt.Sprintf("File opened successfully: %s", p.FilePath),
		nil, e.currentSheet, names, "", p.FilePath)
}

func execSaveFile(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p FileParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error saving file: "+err.Error(), err.Error())
	}
	if p.FilePath == "" {
		return failure("No file path provided", "file_path parameter is required")
	}
	if err := e.bridge.SaveAs(ctx, p.FilePath); err != nil {
		return failure("Error saving file: "+err.Error(), err.Error())
	}
	e.filePath = p.FilePath
	return BuildObservation(true,
		fmt.Sprintf("File saved successfully: %s", p.FilePath),
		nil, e.currentSheet, nil, "", p.FilePath)
}

func execExportPDF(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p FileParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error exporting PDF: "+err.Error(), err.Error())
	}
	if p.FilePath == "" {
		return failure("No file path provided", "file_path parameter is required")
	}
	if err := e.bridge.ExportPDF(ctx, p.FilePath); err != nil {
		return failure("Error exporting PDF: "+err.Error(), err.Error())
	}
	return BuildObservation(true, "PDF export completed",
		map[string]any{"exported_file": p.FilePath}, e.currentSheet, nil, "", "")
}

func execExportCSV(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p FileParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error exporting CSV: "+err.Error(), err.Error())
	}
	if p.FilePath == "" {
		return failure("No file path provided", "file_path parameter is required")
	}
	sheet := p.Sheet
	if sheet == "" {
		sheet = e.currentSheet
	}
	if err := e.bridge.ExportCSV(ctx, sheet, p.FilePath); err != nil {
		return failure("Error exporting CSV: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("CSV exported successfully: %s", p.FilePath),
		map[string]any{"exported_file": p.FilePath}, e.currentSheet, nil, "", "")
}

func execFormatCell(ctx context.Context, e *Environment, raw json.RawMessage) Observation {
	var p FormatCellParams
	if err := decodeParams(raw, &p); err != nil {
		return failure("Error formatting cell: "+err.Error(), err.Error())
	}
	if p.Cell == "" {
		return failure("No cell specified", "cell parameter is required")
	}
	sheet := e.sheetOr(p.Sheet)
	format := bridge.CellFormat{
		Bold:   p.FormatOptions.Bold,
		Italic: p.FormatOptions.Italic,
		Color:  p.FormatOptions.Color,
	}
	if err := e.bridge.FormatCell(ctx, sheet, p.Cell, format); err != nil {
		return failure("Error formatting cell: "+err.Error(), err.Error())
	}
	return BuildObservation(true,
		fmt.Sprintf("Cell %s formatted successfully", p.Cell),
		nil, sheet, nil, "", "")
}
