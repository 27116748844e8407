// Package engine implements bridge.Bridge on a headless workbook engine.
// Cell, range, sheet, and formula primitives are delegated to excelize;
// PDF rendering is delegated to a headless soffice subprocess.
package engine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/calcbridge/calcctl/bridge"
	"github.com/calcbridge/calcctl/internal"
)

const defaultConvertTimeout = 60 * time.Second

// Engine is an in-process workbook engine. It satisfies bridge.Bridge.
// All methods serialize on an internal mutex: one engine, one workbook.
type Engine struct {
	mu   sync.Mutex
	file *excelize.File

	sofficePath    string
	convertTimeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithSofficePath sets the soffice binary used for PDF export.
func WithSofficePath(path string) Option {
	return func(e *Engine) {
		if path != "" {
			e.sofficePath = path
		}
	}
}

// WithConvertTimeout bounds how long a PDF conversion may run.
func WithConvertTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.convertTimeout = d
		}
	}
}

// New creates an engine with a blank workbook open.
func New(opts ...Option) *Engine {
	e := &Engine{
		file:           excelize.NewFile(),
		sofficePath:    "soffice",
		convertTimeout: defaultConvertTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) NewDocument(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file != nil {
		e.file.Close()
	}
	e.file = excelize.NewFile()
	return nil
}

func (e *Engine) Open(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	if e.file != nil {
		e.file.Close()
	}
	e.file = f
	return nil
}

func (e *Engine) SaveAs(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", path, err)
		}
	}
	if err := e.file.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

func (e *Engine) SheetNames(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil, bridge.ErrNoDocument
	}
	return e.file.GetSheetList(), nil
}

func (e *Engine) AddSheet(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if idx, _ := e.file.GetSheetIndex(name); idx >= 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetExists, name)
	}
	if _, err := e.file.NewSheet(name); err != nil {
		return fmt.Errorf("adding sheet %q: %w", name, err)
	}
	return nil
}

func (e *Engine) DeleteSheet(ctx context.Context, name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if idx, _ := e.file.GetSheetIndex(name); idx < 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetNotFound, name)
	}
	if len(e.file.GetSheetList()) == 1 {
		return bridge.ErrLastSheet
	}
	if err := e.file.DeleteSheet(name); err != nil {
		return fmt.Errorf("deleting sheet %q: %w", name, err)
	}
	return nil
}

func (e *Engine) RenameSheet(ctx context.Context, oldName, newName string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if idx, _ := e.file.GetSheetIndex(oldName); idx < 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetNotFound, oldName)
	}
	if idx, _ := e.file.GetSheetIndex(newName); idx >= 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetExists, newName)
	}
	if err := e.file.SetSheetName(oldName, newName); err != nil {
		return fmt.Errorf("renaming sheet %q: %w", oldName, err)
	}
	return nil
}

func (e *Engine) GetCell(ctx context.Context, sheet, cell string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkCell(sheet, cell); err != nil {
		return nil, err
	}
	return e.resolveCell(sheet, cell)
}

func (e *Engine) SetCell(ctx context.Context, sheet, cell string, value any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkCell(sheet, cell); err != nil {
		return err
	}
	return e.setCellValue(sheet, cell, value)
}

func (e *Engine) GetFormula(ctx context.Context, sheet, cell string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkCell(sheet, cell); err != nil {
		return "", err
	}
	formula, err := e.file.GetCellFormula(sheet, cell)
	if err != nil {
		return "", fmt.Errorf("reading formula at %s: %w", cell, err)
	}
	if formula != "" && !strings.HasPrefix(formula, "=") {
		formula = "=" + formula
	}
	return formula, nil
}

func (e *Engine) SetFormula(ctx context.Context, sheet, cell, formula string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkCell(sheet, cell); err != nil {
		return err
	}
	if err := e.file.SetCellFormula(sheet, cell, strings.TrimPrefix(formula, "=")); err != nil {
		return fmt.Errorf("setting formula at %s: %w", cell, err)
	}
	return nil
}

func (e *Engine) GetRange(ctx context.Context, sheet, rangeRef string) ([][]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkSheet(sheet); err != nil {
		return nil, err
	}
	_, startRow, startCol, endRow, endCol, err := internal.ParseRange(rangeRef)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", bridge.ErrBadAddress, err)
	}

	values := make([][]any, 0, endRow-startRow+1)
	for row := startRow; row <= endRow; row++ {
		line := make([]any, 0, endCol-startCol+1)
		for col := startCol; col <= endCol; col++ {
			v, err := e.resolveCell(sheet, internal.CellName(col, row))
			if err != nil {
				return nil, err
			}
			line = append(line, v)
		}
		values = append(values, line)
	}
	return values, nil
}

func (e *Engine) SetRange(ctx context.Context, sheet, rangeRef string, values [][]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkSheet(sheet); err != nil {
		return err
	}
	_, startRow, startCol, _, _, err := internal.ParseRange(rangeRef)
	if err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrBadAddress, err)
	}

	// The range reference anchors the top-left corner; the value matrix
	// decides the extent, as in the office automation API.
	for i, row := range values {
		for j, value := range row {
			cell := internal.CellName(startCol+j, startRow+i)
			if err := e.setCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *Engine) FormatCell(ctx context.Context, sheet, cell string, format bridge.CellFormat) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkCell(sheet, cell); err != nil {
		return err
	}

	styleID, err := e.file.GetCellStyle(sheet, cell)
	if err != nil {
		return fmt.Errorf("reading style at %s: %w", cell, err)
	}
	style, err := e.file.GetStyle(styleID)
	if err != nil || style == nil {
		style = &excelize.Style{}
	}
	if style.Font == nil {
		style.Font = &excelize.Font{}
	}
	if format.Bold != nil {
		style.Font.Bold = *format.Bold
	}
	if format.Italic != nil {
		style.Font.Italic = *format.Italic
	}
	if format.Color != "" {
		style.Font.Color = strings.TrimPrefix(format.Color, "#")
	}

	newID, err := e.file.NewStyle(style)
	if err != nil {
		return fmt.Errorf("building style for %s: %w", cell, err)
	}
	if err := e.file.SetCellStyle(sheet, cell, cell, newID); err != nil {
		return fmt.Errorf("applying style at %s: %w", cell, err)
	}
	return nil
}

// ExportPDF saves the workbook to a scratch file and hands rendering to a
// headless soffice process.
func (e *Engine) ExportPDF(ctx context.Context, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}

	outDir := filepath.Dir(path)
	if outDir == "" || outDir == "." {
		outDir = "."
	} else if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	scratch, err := os.MkdirTemp("", "calcctl-pdf-")
	if err != nil {
		return fmt.Errorf("creating scratch directory: %w", err)
	}
	defer os.RemoveAll(scratch)

	source := filepath.Join(scratch, "workbook.xlsx")
	if err := e.file.SaveAs(source); err != nil {
		return fmt.Errorf("staging workbook for export: %w", err)
	}

	convertCtx, cancel := context.WithTimeout(ctx, e.convertTimeout)
	defer cancel()
	cmd := exec.CommandContext(convertCtx, e.sofficePath,
		"--headless", "--convert-to", "pdf", "--outdir", scratch, source)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("soffice conversion failed: %v: %s", err, strings.TrimSpace(string(out)))
	}

	produced := filepath.Join(scratch, "workbook.pdf")
	data, err := os.ReadFile(produced)
	if err != nil {
		return fmt.Errorf("conversion produced no PDF: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (e *Engine) ExportCSV(ctx context.Context, sheet, path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if sheet == "" {
		sheet = e.file.GetSheetList()[0]
	} else if idx, _ := e.file.GetSheetIndex(sheet); idx < 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetNotFound, sheet)
	}

	rows, err := e.file.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return writeCSV(path, rows)
}

// checkSheet validates the sheet name against the open workbook. An empty
// name is rejected here: the environment resolves the current sheet before
// calling the bridge.
func (e *Engine) checkSheet(sheet string) error {
	if e.file == nil {
		return bridge.ErrNoDocument
	}
	if idx, _ := e.file.GetSheetIndex(sheet); idx < 0 {
		return fmt.Errorf("%w: %q", bridge.ErrSheetNotFound, sheet)
	}
	return nil
}

func (e *Engine) checkCell(sheet, cell string) error {
	if err := e.checkSheet(sheet); err != nil {
		return err
	}
	if _, _, err := internal.ParseCell(cell); err != nil {
		return fmt.Errorf("%w: %v", bridge.ErrBadAddress, err)
	}
	return nil
}

// resolveCell reads one cell the way the office bridge does: formula cells
// yield their computed value as a string, plain number cells yield a
// float64, everything else yields the display string.
func (e *Engine) resolveCell(sheet, cell string) (any, error) {
	formula, err := e.file.GetCellFormula(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cell, err)
	}
	if formula != "" {
		computed, err := e.file.CalcCellValue(sheet, cell)
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", cell, err)
		}
		return computed, nil
	}

	text, err := e.file.GetCellValue(sheet, cell)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", cell, err)
	}
	if n, err := strconv.ParseFloat(text, 64); err == nil && strings.TrimSpace(text) != "" {
		return n, nil
	}
	return text, nil
}

func (e *Engine) setCellValue(sheet, cell string, value any) error {
	var err error
	switch v := value.(type) {
	case nil:
		err = e.file.SetCellValue(sheet, cell, "")
	case float64, float32, int, int32, int64, bool:
		err = e.file.SetCellValue(sheet, cell, v)
	case string:
		err = e.file.SetCellValue(sheet, cell, v)
	default:
		err = e.file.SetCellValue(sheet, cell, fmt.Sprint(v))
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", cell, err)
	}
	return nil
}
