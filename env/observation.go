package env

// Observation is the fixed response shape for every action. All fields are
// always present in the JSON encoding; consumers never branch on missing
// keys.
type Observation struct {
	Result       string   `json:"result"`
	Success      bool     `json:"success"`
	Data         any      `json:"data"`
	CurrentSheet string   `json:"current_sheet"`
	SheetNames   []string `json:"sheet_names"`
	ErrorMessage string   `json:"error_message"`
	FilePath     string   `json:"file_path"`
}

// BuildObservation assembles an Observation. It is a pure function: no
// I/O, no side effects. A nil sheet-name slice is normalized to an empty
// one so the JSON field is always a list.
func BuildObservation(success bool, result string, data any, currentSheet string, sheetNames []string, errorMessage, filePath string) Observation {
	if sheetNames == nil {
		sheetNames = []string{}
	}
	return Observation{
		Result:       result,
		Success:      success,
		Data:         data,
		CurrentSheet: currentSheet,
		SheetNames:   sheetNames,
		ErrorMessage: errorMessage,
		FilePath:     filePath,
	}
}

// failure builds a failed observation from a result line and error text.
func failure(result, errorMessage string) Observation {
	return BuildObservation(false, result, nil, "", nil, errorMessage, "")
}
