package client

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/calcbridge/calcctl/env"
)

// captureTransport records the last request body and replies with a fixed
// successful step response.
type captureTransport struct {
	lastPath string
	lastBody []byte
	lastAuth string
}

func (c *captureTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	c.lastPath = req.URL.Path
	c.lastAuth = req.Header.Get("Authorization")
	if req.Body != nil {
		c.lastBody, _ = io.ReadAll(req.Body)
		req.Body.Close()
	}
	body := `{"observation":{"result":"ok","success":true,"data":null,"current_sheet":"Sheet1","sheet_names":["Sheet1"],"error_message":"","file_path":""},"metadata":{"episode_id":"e1","step":1,"command":"set_cell"}}`
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
		Request:    req,
	}, nil
}

func decodeAction(t *testing.T, body []byte) env.Action {
	t.Helper()
	var action env.Action
	if err := json.Unmarshal(body, &action); err != nil {
		t.Fatalf("request body is not an action: %v", err)
	}
	return action
}

func TestFacadeBuildsActions(t *testing.T) {
	tr := &captureTransport{}
	c := newTestClient(t, tr)

	tests := []struct {
		name       string
		call       func() (*StepResult, error)
		command    string
		wantParams map[string]any
	}{
		{
			name:       "set_cell",
			call:       func() (*StepResult, error) { return c.SetCell("A1", 42, "") },
			command:    env.CmdSetCell,
			wantParams: map[string]any{"cell": "A1", "value": float64(42)},
		},
		{
			name:       "get_cell with sheet",
			call:       func() (*StepResult, error) { return c.GetCell("B2", "Data") },
			command:    env.CmdGetCell,
			wantParams: map[string]any{"sheet": "Data", "cell": "B2"},
		},
		{
			name:       "set_formula",
			call:       func() (*StepResult, error) { return c.SetFormula("C1", "=SUM(A1:A10)", "") },
			command:    env.CmdSetFormula,
			wantParams: map[string]any{"cell": "C1", "formula": "=SUM(A1:A10)"},
		},
		{
			name:       "rename_sheet",
			call:       func() (*StepResult, error) { return c.RenameSheet("Old", "New") },
			command:    env.CmdRenameSheet,
			wantParams: map[string]any{"old_name": "Old", "new_name": "New"},
		},
		{
			name:       "save_file",
			call:       func() (*StepResult, error) { return c.SaveFile("/tmp/out.xlsx") },
			command:    env.CmdSaveFile,
			wantParams: map[string]any{"file_path": "/tmp/out.xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.call()
			if err != nil {
				t.Fatalf("facade call failed: %v", err)
			}
			if !result.Observation.Success {
				t.Fatal("expected parsed success observation")
			}
			if tr.lastPath != "/v0/step" {
				t.Fatalf("expected /v0/step, got %s", tr.lastPath)
			}
			if tr.lastAuth != "Bearer test-token" {
				t.Fatalf("expected bearer header, got %q", tr.lastAuth)
			}

			action := decodeAction(t, tr.lastBody)
			if action.Command != tt.command {
				t.Fatalf("expected command %s, got %s", tt.command, action.Command)
			}
			var params map[string]any
			if err := json.Unmarshal(action.Parameters, &params); err != nil {
				t.Fatalf("parameters are not a JSON object: %v", err)
			}
			for key, want := range tt.wantParams {
				if got := params[key]; got != want {
					t.Errorf("param %s = %v, want %v", key, got, want)
				}
			}
		})
	}
}

func TestFacadeSetRangePayload(t *testing.T) {
	tr := &captureTransport{}
	c := newTestClient(t, tr)

	if _, err := c.SetRange("A1:B2", [][]any{{1, 2}, {3, 4}}, "Data"); err != nil {
		t.Fatalf("SetRange failed: %v", err)
	}

	action := decodeAction(t, tr.lastBody)
	var params env.SetRangeParams
	if err := json.Unmarshal(action.Parameters, &params); err != nil {
		t.Fatalf("decoding params: %v", err)
	}
	if params.Range != "A1:B2" || params.Sheet != "Data" {
		t.Fatalf("unexpected params: %+v", params)
	}
	if len(params.Values) != 2 || len(params.Values[0]) != 2 {
		t.Fatalf("value matrix shape lost: %+v", params.Values)
	}
}

func TestCreateSheetHasNoParameters(t *testing.T) {
	tr := &captureTransport{}
	c := newTestClient(t, tr)

	if _, err := c.CreateSheet(); err != nil {
		t.Fatalf("CreateSheet failed: %v", err)
	}
	action := decodeAction(t, tr.lastBody)
	if action.Command != env.CmdCreateSheet {
		t.Fatalf("expected create_sheet, got %s", action.Command)
	}
	if len(action.Parameters) != 0 {
		t.Fatalf("expected empty parameters, got %s", action.Parameters)
	}
}
