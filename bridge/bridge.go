// Package bridge defines the contract between the environment layer and the
// office engine that actually holds the workbook. Each method is one
// synchronous primitive; the engine reports failures as errors and this
// layer adds no retry or caching on top.
package bridge

import (
	"context"
	"errors"
)

// Common engine failures. Engines wrap their native errors with these so the
// dispatch layer can surface a stable message; anything else passes through
// verbatim.
var (
	ErrSheetNotFound = errors.New("sheet not found")
	ErrSheetExists   = errors.New("sheet already exists")
	ErrLastSheet     = errors.New("cannot delete the only sheet in the workbook")
	ErrBadAddress    = errors.New("invalid cell or range address")
	ErrNoDocument    = errors.New("no document is open")
)

// CellFormat holds the formatting options format_cell accepts. Nil pointers
// mean "leave unchanged".
type CellFormat struct {
	Bold   *bool
	Italic *bool
	// Color is a font color like "#FF0000".
	Color string
}

// Bridge is the set of office primitives the dispatcher maps commands onto.
// One environment instance owns exactly one Bridge; calls are serial.
type Bridge interface {
	// NewDocument discards any open workbook and starts a blank one.
	NewDocument(ctx context.Context) error
	// Open loads a workbook from disk, replacing the current one.
	Open(ctx context.Context, path string) error
	// SaveAs writes the current workbook to path.
	SaveAs(ctx context.Context, path string) error
	// Close releases the engine's resources.
	Close(ctx context.Context) error

	// SheetNames returns all sheet names in workbook order.
	SheetNames(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, name string) error
	DeleteSheet(ctx context.Context, name string) error
	RenameSheet(ctx context.Context, oldName, newName string) error

	// GetCell returns the cell's display string, or its numeric value for
	// plain number cells.
	GetCell(ctx context.Context, sheet, cell string) (any, error)
	SetCell(ctx context.Context, sheet, cell string, value any) error
	GetFormula(ctx context.Context, sheet, cell string) (string, error)
	SetFormula(ctx context.Context, sheet, cell, formula string) error

	// GetRange returns a dense row-major matrix matching the range shape.
	GetRange(ctx context.Context, sheet, rangeRef string) ([][]any, error)
	SetRange(ctx context.Context, sheet, rangeRef string, values [][]any) error

	FormatCell(ctx context.Context, sheet, cell string, format CellFormat) error

	// ExportPDF renders the workbook to a PDF file at path.
	ExportPDF(ctx context.Context, path string) error
	// ExportCSV writes the named sheet (or the first sheet if sheet is "")
	// as CSV to path.
	ExportCSV(ctx context.Context, sheet, path string) error
}
