package backtest

import (
	"context"
	"encoding/json"
	"regexp"

	"CamarillaBacktester/internal/model"
)

// ExportExt is the file extension of exported runs.
const ExportExt = ".qwc"

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// exportDoc is a stored run without its id and share id.
type exportDoc struct {
	Timestamp  string               `json:"timestamp"`
	TestType   model.TestType       `json:"test_type"`
	TestName   string               `json:"test_name"`
	Pattern    string               `json:"pattern"`
	Parameters model.BacktestParams `json:"parameters"`
	Results    *model.Report        `json:"results"`
	Notes      string               `json:"notes"`
}

// ExportFilename derives a download name from a test name.
func ExportFilename(testName string) string {
	if testName == "" {
		testName = "export"
	}
	return "backtest_" + unsafeFilename.ReplaceAllString(testName, "_") + ExportExt
}

// Export renders a stored run as an indented JSON document and returns it
// with its download filename.
func (s *Service) Export(ctx context.Context, id int64) ([]byte, string, error) {
	b, err := s.recorder.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	doc := exportDoc{
		Timestamp:  b.Timestamp.Format("2006-01-02 15:04:05"),
		TestType:   b.TestType,
		TestName:   b.TestName,
		Pattern:    b.Pattern,
		Parameters: b.Parameters,
		Results:    b.Results,
		Notes:      b.Notes,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return data, ExportFilename(b.TestName), nil
}
