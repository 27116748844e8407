package env_test

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbridge/calcctl/bridge/engine"
	"github.com/calcbridge/calcctl/env"
)

func newTestEnv(t *testing.T, opts ...env.Option) *env.Environment {
	t.Helper()
	e := env.New(engine.New(), opts...)
	obs := e.Reset(context.Background())
	require.True(t, obs.Success, "reset failed: %s", obs.ErrorMessage)
	t.Cleanup(func() { e.Close(context.Background()) })
	return e
}

func step(t *testing.T, e *env.Environment, command string, params any) env.Observation {
	t.Helper()
	action, err := env.NewAction(command, params)
	require.NoError(t, err)
	obs, _ := e.Step(context.Background(), action)
	return obs
}

func TestResetObservation(t *testing.T) {
	e := env.New(engine.New())
	obs := e.Reset(context.Background())

	require.True(t, obs.Success)
	assert.Equal(t, "Environment ready!", obs.Result)
	assert.Equal(t, "Sheet1", obs.CurrentSheet)
	assert.Equal(t, []string{"Sheet1"}, obs.SheetNames)
	assert.Empty(t, obs.ErrorMessage)
}

func TestUnknownCommand(t *testing.T) {
	e := newTestEnv(t)
	obs := step(t, e, "explode", nil)

	assert.False(t, obs.Success)
	assert.Equal(t, "Unknown command: explode", obs.Result)
	assert.NotEmpty(t, obs.ErrorMessage)
}

func TestCellRoundTrip(t *testing.T) {
	e := newTestEnv(t)

	obs := step(t, e, env.CmdSetCell, env.SetCellParams{Cell: "A1", Value: "Hello World"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Cell A1 set to Hello World", obs.Result)
	assert.Equal(t, "Sheet1", obs.CurrentSheet)

	obs = step(t, e, env.CmdGetCell, env.GetCellParams{Cell: "A1"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Hello World", obs.Data)
}

func TestFormulaComputationRoundTrip(t *testing.T) {
	e := newTestEnv(t)

	require.True(t, step(t, e, env.CmdSetCell, env.SetCellParams{Cell: "A1", Value: 21}).Success)
	require.True(t, step(t, e, env.CmdSetFormula, env.SetFormulaParams{Cell: "B1", Formula: "=A1*2"}).Success)

	obs := step(t, e, env.CmdGetCell, env.GetCellParams{Cell: "B1"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "42", obs.Data)

	obs = step(t, e, env.CmdGetFormula, env.GetFormulaParams{Cell: "B1"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "=A1*2", obs.Data)
}

func TestRangeRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	values := [][]any{
		{"a", 1.0},
		{"b", 2.0},
		{"c", 3.0},
	}

	obs := step(t, e, env.CmdSetRange, env.SetRangeParams{Range: "A1:B3", Values: values})
	require.True(t, obs.Success, obs.ErrorMessage)

	obs = step(t, e, env.CmdGetRange, env.GetRangeParams{Range: "A1:B3"})
	require.True(t, obs.Success, obs.ErrorMessage)
	got, ok := obs.Data.([][]any)
	require.True(t, ok, "data is %T", obs.Data)
	assert.Equal(t, values, got)
}

func TestMissingParameters(t *testing.T) {
	e := newTestEnv(t)

	tests := []struct {
		command string
		params  any
		errText string
	}{
		{env.CmdSetCell, env.SetCellParams{Value: 1}, "cell parameter is required"},
		{env.CmdGetCell, nil, "cell parameter is required"},
		{env.CmdSetFormula, env.SetFormulaParams{Cell: "A1"}, "cell and formula parameters are required"},
		{env.CmdGetFormula, nil, "cell parameter is required"},
		{env.CmdSetRange, env.SetRangeParams{Range: "A1:B2"}, "range and values parameters are required"},
		{env.CmdGetRange, nil, "range parameter is required"},
		{env.CmdDeleteSheet, nil, "name parameter is required"},
		{env.CmdRenameSheet, env.RenameSheetParams{OldName: "Sheet1"}, "old_name and new_name parameters are required"},
		{env.CmdOpenFile, nil, "file_path parameter is required"},
		{env.CmdSaveFile, nil, "file_path parameter is required"},
		{env.CmdExportPDF, nil, "file_path parameter is required"},
		{env.CmdExportCSV, nil, "file_path parameter is required"},
		{env.CmdFormatCell, nil, "cell parameter is required"},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			obs := step(t, e, tt.command, tt.params)
			assert.False(t, obs.Success)
			assert.Equal(t, tt.errText, obs.ErrorMessage)
		})
	}
}

func TestMalformedParameters(t *testing.T) {
	e := newTestEnv(t)
	obs, _ := e.Step(context.Background(), env.Action{
		Command:    env.CmdSetCell,
		Parameters: json.RawMessage(`{"cell": 42}`),
	})

	assert.False(t, obs.Success)
	assert.NotEmpty(t, obs.ErrorMessage)
}

func TestSheetCommands(t *testing.T) {
	e := newTestEnv(t)

	obs := step(t, e, env.CmdAddSheet, env.AddSheetParams{Name: "Data"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Sheet 'Data' added successfully", obs.Result)
	assert.Equal(t, "Data", obs.CurrentSheet)
	assert.Equal(t, []string{"Sheet1", "Data"}, obs.SheetNames)

	// generated name when none is given
	obs = step(t, e, env.CmdAddSheet, nil)
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Sheet3", obs.CurrentSheet)

	obs = step(t, e, env.CmdRenameSheet, env.RenameSheetParams{OldName: "Sheet3", NewName: "Summary"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Summary", obs.CurrentSheet)

	// deleting the active sheet falls back to the first remaining one
	obs = step(t, e, env.CmdDeleteSheet, env.DeleteSheetParams{Name: "Summary"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Sheet1", obs.CurrentSheet)
	assert.Equal(t, []string{"Sheet1", "Data"}, obs.SheetNames)
}

func TestDeleteSheetFailures(t *testing.T) {
	e := newTestEnv(t)

	obs := step(t, e, env.CmdDeleteSheet, env.DeleteSheetParams{Name: "Nope"})
	assert.False(t, obs.Success)
	assert.Contains(t, obs.ErrorMessage, "sheet not found")

	obs = step(t, e, env.CmdDeleteSheet, env.DeleteSheetParams{Name: "Sheet1"})
	assert.False(t, obs.Success)
	assert.Contains(t, obs.ErrorMessage, "only sheet")
}

func TestUnknownSheetIsSurfaced(t *testing.T) {
	e := newTestEnv(t)
	obs := step(t, e, env.CmdGetCell, env.GetCellParams{Sheet: "Ghost", Cell: "A1"})

	assert.False(t, obs.Success)
	assert.Contains(t, obs.ErrorMessage, "sheet not found")
}

func TestSaveAndOpenFile(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "book.xlsx")

	require.True(t, step(t, e, env.CmdSetCell, env.SetCellParams{Cell: "A1", Value: "kept"}).Success)

	obs := step(t, e, env.CmdSaveFile, env.FileParams{FilePath: path})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, path, obs.FilePath)

	// wipe, then load it back
	require.True(t, step(t, e, env.CmdCreateSheet, nil).Success)
	obs = step(t, e, env.CmdOpenFile, env.FileParams{FilePath: path})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, path, obs.FilePath)
	assert.Equal(t, "Sheet1", obs.CurrentSheet)

	obs = step(t, e, env.CmdGetCell, env.GetCellParams{Cell: "A1"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "kept", obs.Data)
}

func TestExportCSV(t *testing.T) {
	e := newTestEnv(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	require.True(t, step(t, e, env.CmdSetCell, env.SetCellParams{Cell: "A1", Value: "x"}).Success)
	obs := step(t, e, env.CmdExportCSV, env.FileParams{FilePath: path})
	require.True(t, obs.Success, obs.ErrorMessage)

	data, ok := obs.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, path, data["exported_file"])
}

func TestFormatCell(t *testing.T) {
	e := newTestEnv(t)
	bold := true

	obs := step(t, e, env.CmdFormatCell, env.FormatCellParams{
		Cell:          "A1",
		FormatOptions: env.FormatOptions{Bold: &bold, Color: "#00FF00"},
	})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "Cell A1 formatted successfully", obs.Result)
}

func TestStepMetadata(t *testing.T) {
	e := newTestEnv(t)

	action, err := env.NewAction(env.CmdGetCell, env.GetCellParams{Cell: "A1"})
	require.NoError(t, err)

	_, info := e.Step(context.Background(), action)
	assert.Equal(t, 1, info.Step)
	assert.Equal(t, env.CmdGetCell, info.Command)
	assert.NotEmpty(t, info.EpisodeID)

	_, info = e.Step(context.Background(), action)
	assert.Equal(t, 2, info.Step)

	state := e.State()
	assert.Equal(t, 2, state.StepCount)
	assert.Equal(t, info.EpisodeID, state.EpisodeID)
}

func TestResetStartsNewEpisode(t *testing.T) {
	e := newTestEnv(t)

	first := e.State()
	_, _ = e.Step(context.Background(), env.Action{Command: env.CmdCreateSheet})

	obs := e.Reset(context.Background())
	require.True(t, obs.Success)

	second := e.State()
	assert.NotEqual(t, first.EpisodeID, second.EpisodeID)
	assert.Equal(t, 0, second.StepCount)
}

func TestBaseAndGoalFiles(t *testing.T) {
	dir := t.TempDir()
	basePath := filepath.Join(dir, "base.xlsx")
	goalPath := filepath.Join(dir, "goal.xlsx")

	// build the base workbook
	seed := newTestEnv(t)
	require.True(t, step(t, seed, env.CmdSetCell, env.SetCellParams{Cell: "A1", Value: "seeded"}).Success)
	require.True(t, step(t, seed, env.CmdSaveFile, env.FileParams{FilePath: basePath}).Success)

	e := env.New(engine.New(), env.WithBaseFile(basePath), env.WithGoalFile(goalPath))
	obs := e.Reset(context.Background())
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, basePath, obs.FilePath)

	obs = step(t, e, env.CmdGetCell, env.GetCellParams{Cell: "A1"})
	require.True(t, obs.Success, obs.ErrorMessage)
	assert.Equal(t, "seeded", obs.Data)

	obs = e.Close(context.Background())
	require.True(t, obs.Success, obs.ErrorMessage)

	// the goal file holds the final workbook state
	check := env.New(engine.New())
	require.True(t, check.Reset(context.Background()).Success)
	obs = step(t, check, env.CmdOpenFile, env.FileParams{FilePath: goalPath})
	require.True(t, obs.Success, obs.ErrorMessage)
}

func TestObservationJSONShape(t *testing.T) {
	e := newTestEnv(t)
	obs := step(t, e, env.CmdGetCell, env.GetCellParams{Cell: "A1"})

	raw, err := json.Marshal(obs)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{"result", "success", "data", "current_sheet", "sheet_names", "error_message", "file_path"} {
		_, present := decoded[key]
		assert.True(t, present, "missing key %s", key)
	}
}
