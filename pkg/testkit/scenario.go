// Package testkit runs JSON-described HTTP scenarios against a handler.
//
// A scenario file holds an ordered array of steps that share one handler, so
// later steps see what earlier ones stored:
//
//	[
//	  {
//	    "name": "member cannot delete menu",
//	    "requestMethod": "DELETE",
//	    "requestUrl": "/menu/{{menuId}}",
//	    "caller": "ann@example.com",
//	    "expectedCode": 403,
//	    "expectedBody": {"success": false, "error": "forbidden"}
//	  }
//	]
//
// expectedBody is a subset match: every key it lists must be present in the
// response with the same value, other keys are ignored.
//
//	func TestAPI(t *testing.T) {
//	    testkit.RunFile(t, handler, "testdata/menu.json", testkit.Options{Token: sign})
//	}
package testkit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Scenario is one request and its expected outcome.
type Scenario struct {
	Name string `json:"name"`

	RequestMethod string            `json:"requestMethod"`
	RequestURL    string            `json:"requestUrl"`
	RequestBody   json.RawMessage   `json:"requestBody"`
	Headers       map[string]string `json:"headers"`
	// Caller, when set, is signed into a bearer token via Options.Token.
	Caller string `json:"caller"`

	ExpectedCode int             `json:"expectedCode"`
	ExpectedBody json.RawMessage `json:"expectedBody"`

	// Capture stores response values for later steps: {"menuId": "data.insertedId"}.
	Capture map[string]string `json:"capture"`
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.RequestURL == "" {
		return fmt.Errorf("requestUrl is required")
	}
	if s.ExpectedCode == 0 {
		return fmt.Errorf("expectedCode is required")
	}
	if s.RequestMethod == "" {
		s.RequestMethod = "GET"
	}
	return nil
}

// LoadFile reads and validates an array of scenarios.
func LoadFile(path string) ([]*Scenario, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("testkit: resolve path %q: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("testkit: read %q: %w", abs, err)
	}

	var scenarios []*Scenario
	if err := json.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("testkit: parse %q: %w", abs, err)
	}
	for i, s := range scenarios {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("testkit: %q step %d: %w", abs, i, err)
		}
	}
	return scenarios, nil
}
