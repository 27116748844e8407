package env

import (
	"encoding/json"
	"fmt"
)

// Supported commands. The dispatch registry is fixed over this set.
const (
	CmdSetCell     = "set_cell"
	CmdGetCell     = "get_cell"
	CmdSetFormula  = "set_formula"
	CmdGetFormula  = "get_formula"
	CmdSetRange    = "set_range"
	CmdGetRange    = "get_range"
	CmdAddSheet    = "add_sheet"
	CmdDeleteSheet = "delete_sheet"
	CmdRenameSheet = "rename_sheet"
	CmdCreateSheet = "create_sheet"
	CmdOpenFile    = "open_file"
	CmdSaveFile    = "save_file"
	CmdExportPDF   = "export_pdf"
	CmdExportCSV   = "export_csv"
	CmdFormatCell  = "format_cell"
)

// Action is one command request. Parameters stay raw until the dispatcher
// decodes them into the command's typed parameter struct, so a malformed
// action fails at decode time with a failure observation, never a panic.
type Action struct {
	Command    string          `json:"command"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
}

// NewAction builds an Action from a typed parameter struct.
func NewAction(command string, params any) (Action, error) {
	if params == nil {
		return Action{Command: command}, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return Action{}, fmt.Errorf("encoding parameters for %s: %w", command, err)
	}
	return Action{Command: command, Parameters: raw}, nil
}

// Typed parameter records, one per command. The sheet field is optional
// everywhere it appears; empty means the environment's current sheet.

// SetCellParams are the parameters for set_cell.
type SetCellParams struct {
	Sheet string `json:"sheet,omitempty"`
	Cell  string `json:"cell"`
	Value any    `json:"value"`
}

// GetCellParams are the parameters for get_cell.
type GetCellParams struct {
	Sheet string `json:"sheet,omitempty"`
	Cell  string `json:"cell"`
}

// SetFormulaParams are the parameters for set_formula.
type SetFormulaParams struct {
	Sheet   string `json:"sheet,omitempty"`
	Cell    string `json:"cell"`
	Formula string `json:"formula"`
}

// GetFormulaParams are the parameters for get_formula.
type GetFormulaParams struct {
	Sheet string `json:"sheet,omitempty"`
	Cell  string `json:"cell"`
}

// SetRangeParams are the parameters for set_range.
type SetRangeParams struct {
	Sheet  string  `json:"sheet,omitempty"`
	Range  string  `json:"range"`
	Values [][]any `json:"values"`
}

// GetRangeParams are the parameters for get_range.
type GetRangeParams struct {
	Sheet string `json:"sheet,omitempty"`
	Range string `json:"range"`
}

// AddSheetParams are the parameters for add_sheet. Name is optional; a
// SheetN name is generated when absent.
type AddSheetParams struct {
	Name string `json:"name,omitempty"`
}

// DeleteSheetParams are the parameters for delete_sheet.
type DeleteSheetParams struct {
	Name string `json:"name"`
}

// RenameSheetParams are the parameters for rename_sheet.
type RenameSheetParams struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

// FileParams carry a file path for open_file, save_file, export_pdf and
// export_csv. Sheet applies to export_csv only.
type FileParams struct {
	FilePath string `json:"file_path"`
	Sheet    string `json:"sheet,omitempty"`
}

// FormatOptions is the formatting mapping accepted by format_cell.
type FormatOptions struct {
	Bold   *bool  `json:"bold,omitempty"`
	Italic *bool  `json:"italic,omitempty"`
	Color  string `json:"color,omitempty"`
}

// FormatCellParams are the parameters for format_cell.
type FormatCellParams struct {
	Sheet         string        `json:"sheet,omitempty"`
	Cell          string        `json:"cell"`
	FormatOptions FormatOptions `json:"format_options"`
}

// decodeParams unmarshals raw action parameters into a typed record.
// Absent parameters decode as the zero value; required-field checks happen
// in the handlers so each command reports its own missing fields.
func decodeParams(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("invalid parameters: %w", err)
	}
	return nil
}
