// Package env is the command layer between callers and the office bridge:
// it maps structured actions onto single bridge calls and normalizes every
// outcome, success or failure, into a fixed observation shape.
package env

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"

	"github.com/calcbridge/calcctl/bridge"
)

// State identifies the current episode.
type State struct {
	EpisodeID string `json:"episode_id"`
	StepCount int    `json:"step_count"`
}

// StepInfo is the metadata attached to each step result.
type StepInfo struct {
	EpisodeID string `json:"episode_id"`
	Step      int    `json:"step"`
	Command   string `json:"command"`
}

// Environment owns one bridge handle plus the cursor state around it (the
// active sheet, the last file path, episode bookkeeping). Instances are
// independent; nothing here is process-global. Steps execute serially.
type Environment struct {
	mu     sync.Mutex
	bridge bridge.Bridge

	baseFile string
	goalFile string

	episodeID    string
	stepCount    int
	currentSheet string
	filePath     string
}

// Option configures an Environment.
type Option func(*Environment)

// WithBaseFile makes Reset load an existing workbook instead of starting
// blank.
func WithBaseFile(path string) Option {
	return func(e *Environment) { e.baseFile = path }
}

// WithGoalFile makes Close save the workbook to path before shutting the
// bridge down.
func WithGoalFile(path string) Option {
	return func(e *Environment) { e.goalFile = path }
}

// New creates an environment around the given bridge. Call Reset before
// stepping.
func New(b bridge.Bridge, opts ...Option) *Environment {
	e := &Environment{bridge: b}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Reset starts a new episode: a fresh document (or the base file), cursor
// on the first sheet, step count zeroed.
func (e *Environment) Reset(ctx context.Context) Observation {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.episodeID = newEpisodeID()
	e.stepCount = 0
	e.filePath = ""
	e.currentSheet = ""

	if err := e.bridge.NewDocument(ctx); err != nil {
		return failure("Failed to initialize environment", err.Error())
	}
	if e.baseFile != "" {
		if err := e.bridge.Open(ctx, e.baseFile); err != nil {
			return failure("Failed to open base file: "+e.baseFile, err.Error())
		}
		e.filePath = e.baseFile
	}

	names := e.sheetList(ctx)
	if len(names) > 0 {
		e.currentSheet = names[0]
	}
	return BuildObservation(true, "Environment ready!",
		nil, e.currentSheet, names, "", e.filePath)
}

// Step executes one action and returns its observation with step metadata.
// It never returns a Go error: malformed actions and bridge failures both
// come back as failure observations.
func (e *Environment) Step(ctx context.Context, action Action) (Observation, StepInfo) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stepCount++
	obs := dispatch(ctx, e, action)
	return obs, StepInfo{
		EpisodeID: e.episodeID,
		Step:      e.stepCount,
		Command:   action.Command,
	}
}

// State reports the current episode id and step count.
func (e *Environment) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{EpisodeID: e.episodeID, StepCount: e.stepCount}
}

// Close saves the goal file when configured and releases the bridge.
func (e *Environment) Close(ctx context.Context) Observation {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.goalFile != "" {
		if err := e.bridge.SaveAs(ctx, e.goalFile); err != nil {
			return failure("Error saving goal file: "+e.goalFile, err.Error())
		}
	}
	if err := e.bridge.Close(ctx); err != nil {
		return failure("Error during close: "+err.Error(), err.Error())
	}
	return BuildObservation(true, "Environment closed successfully.",
		nil, "", nil, "", "")
}

// sheetOr returns the explicit sheet name, or the current sheet when none
// was given.
func (e *Environment) sheetOr(sheet string) string {
	if sheet != "" {
		return sheet
	}
	return e.currentSheet
}

// sheetList reads the sheet names best-effort for observation building.
func (e *Environment) sheetList(ctx context.Context) []string {
	names, err := e.bridge.SheetNames(ctx)
	if err != nil {
		return []string{}
	}
	return names
}

func newEpisodeID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "episode-unknown"
	}
	return hex.EncodeToString(b[:])
}
