// Package reporter provides test result formatting and output.
package reporter

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/hmbui/bsacore-test/internal/testharness/engine"
)

// Reporter formats and outputs test results.
type Reporter interface {
	// ReportTest is called as each test case finishes.
	ReportTest(result *engine.TestResult)

	// ReportSummary is called once after the suite finishes.
	ReportSummary(result *engine.SuiteResult)
}

func status(result *engine.TestResult) string {
	switch {
	case result.Skipped:
		return "SKIP"
	case result.Passed:
		return "PASS"
	default:
		return "FAIL"
	}
}

func passRate(result *engine.SuiteResult) float64 {
	total := result.PassCount + result.FailCount
	if total == 0 {
		return 0
	}
	return float64(result.PassCount) / float64(total) * 100
}

// TextReporter outputs human-readable text reports.
type TextReporter struct {
	writer  io.Writer
	verbose bool
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(w io.Writer, verbose bool) *TextReporter {
	return &TextReporter{writer: w, verbose: verbose}
}

// ReportTest reports a single test result in text format.
func (r *TextReporter) ReportTest(result *engine.TestResult) {
	tc := result.TestCase
	fmt.Fprintf(r.writer, "[%s] %s - %s (%s)\n",
		status(result), tc.ID, tc.Name, result.Duration.Round(time.Millisecond))

	if result.Skipped && result.SkipReason != "" {
		fmt.Fprintf(r.writer, "       Skip reason: %s\n", result.SkipReason)
	}
	if !result.Passed && result.Error != nil {
		fmt.Fprintf(r.writer, "       Error: %v\n", result.Error)
	}

	if !r.verbose {
		return
	}
	for _, sr := range result.StepResults {
		stepStatus := "PASS"
		if !sr.Passed {
			stepStatus = "FAIL"
		}
		fmt.Fprintf(r.writer, "    [%s] Step %d: %s (%s)\n",
			stepStatus, sr.StepIndex+1, sr.Step.Action, sr.Duration.Round(time.Millisecond))
		if !sr.Passed && sr.Error != nil {
			fmt.Fprintf(r.writer, "           Error: %v\n", sr.Error)
		}
		for key, er := range sr.ExpectResults {
			expStatus := "OK"
			if !er.Passed {
				expStatus = "FAILED"
			}
			fmt.Fprintf(r.writer, "           [%s] %s: %s\n", expStatus, key, er.Message)
		}
	}
}

// ReportSummary prints the totals.
func (r *TextReporter) ReportSummary(result *engine.SuiteResult) {
	fmt.Fprintf(r.writer, "\n--- %s ---\n", result.SuiteName)
	fmt.Fprintf(r.writer, "Total:    %d\n", len(result.Results))
	fmt.Fprintf(r.writer, "Passed:   %d\n", result.PassCount)
	fmt.Fprintf(r.writer, "Failed:   %d\n", result.FailCount)
	fmt.Fprintf(r.writer, "Skipped:  %d\n", result.SkipCount)
	if result.PassCount+result.FailCount > 0 {
		fmt.Fprintf(r.writer, "Pass Rate: %.1f%%\n", passRate(result))
	}
	fmt.Fprintf(r.writer, "Duration: %s\n", result.Duration.Round(time.Millisecond))
}

// JSONReporter outputs one JSON document for the whole suite.
type JSONReporter struct {
	writer io.Writer
	pretty bool
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(w io.Writer, pretty bool) *JSONReporter {
	return &JSONReporter{writer: w, pretty: pretty}
}

// JSONSuiteResult is the JSON representation of suite results.
type JSONSuiteResult struct {
	SuiteName string           `json:"suite_name"`
	Duration  string           `json:"duration"`
	Total     int              `json:"total"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Skipped   int              `json:"skipped"`
	PassRate  float64          `json:"pass_rate"`
	Tests     []JSONTestResult `json:"tests"`
}

// JSONTestResult is the JSON representation of a test result.
type JSONTestResult struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Status     string           `json:"status"`
	Duration   string           `json:"duration"`
	Error      string           `json:"error,omitempty"`
	SkipReason string           `json:"skip_reason,omitempty"`
	Steps      []JSONStepResult `json:"steps,omitempty"`
}

// JSONStepResult is the JSON representation of a step result.
type JSONStepResult struct {
	Index    int                   `json:"index"`
	Action   string                `json:"action"`
	Status   string                `json:"status"`
	Duration string                `json:"duration"`
	Error    string                `json:"error,omitempty"`
	Expects  map[string]JSONExpect `json:"expects,omitempty"`
	Outputs  map[string]any        `json:"outputs,omitempty"`
}

// JSONExpect is the JSON representation of an expectation result.
type JSONExpect struct {
	Passed   bool   `json:"passed"`
	Expected any    `json:"expected"`
	Actual   any    `json:"actual"`
	Message  string `json:"message"`
}

// ReportTest does nothing; the suite is written as one document.
func (r *JSONReporter) ReportTest(*engine.TestResult) {}

// ReportSummary writes the suite as JSON.
func (r *JSONReporter) ReportSummary(result *engine.SuiteResult) {
	jr := JSONSuiteResult{
		SuiteName: result.SuiteName,
		Duration:  result.Duration.Round(time.Millisecond).String(),
		Total:     len(result.Results),
		Passed:    result.PassCount,
		Failed:    result.FailCount,
		Skipped:   result.SkipCount,
		PassRate:  passRate(result),
		Tests:     make([]JSONTestResult, 0, len(result.Results)),
	}
	for _, tr := range result.Results {
		jr.Tests = append(jr.Tests, testToJSON(tr))
	}

	var (
		data []byte
		err  error
	)
	if r.pretty {
		data, err = json.MarshalIndent(jr, "", "  ")
	} else {
		data, err = json.Marshal(jr)
	}
	if err != nil {
		fmt.Fprintf(r.writer, `{"error": %q}`+"\n", "failed to marshal: "+err.Error())
		return
	}
	fmt.Fprintln(r.writer, string(data))
}

func testToJSON(result *engine.TestResult) JSONTestResult {
	jr := JSONTestResult{
		ID:         result.TestCase.ID,
		Name:       result.TestCase.Name,
		Status:     map[string]string{"SKIP": "skipped", "PASS": "passed", "FAIL": "failed"}[status(result)],
		Duration:   result.Duration.Round(time.Millisecond).String(),
		SkipReason: result.SkipReason,
	}
	if result.Error != nil {
		jr.Error = result.Error.Error()
	}

	for _, sr := range result.StepResults {
		jsr := JSONStepResult{
			Index:    sr.StepIndex,
			Action:   sr.Step.Action,
			Status:   "passed",
			Duration: sr.Duration.Round(time.Millisecond).String(),
			Outputs:  sr.Output,
		}
		if !sr.Passed {
			jsr.Status = "failed"
		}
		if sr.Error != nil {
			jsr.Error = sr.Error.Error()
		}
		if len(sr.ExpectResults) > 0 {
			jsr.Expects = make(map[string]JSONExpect, len(sr.ExpectResults))
			for key, er := range sr.ExpectResults {
				jsr.Expects[key] = JSONExpect{
					Passed:   er.Passed,
					Expected: er.Expected,
					Actual:   er.Actual,
					Message:  er.Message,
				}
			}
		}
		jr.Steps = append(jr.Steps, jsr)
	}
	return jr
}

// JUnitReporter outputs JUnit XML format for CI integration.
type JUnitReporter struct {
	writer io.Writer
}

// NewJUnitReporter creates a new JUnit reporter.
func NewJUnitReporter(w io.Writer) *JUnitReporter {
	return &JUnitReporter{writer: w}
}

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      string        `xml:"time,attr"`
	Skipped   *junitMessage `xml:"skipped,omitempty"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitMessage struct {
	Message string `xml:"message,attr"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Detail  string `xml:",cdata"`
}

// ReportTest does nothing; the suite is written as one document.
func (r *JUnitReporter) ReportTest(*engine.TestResult) {}

// ReportSummary writes the suite as JUnit XML.
func (r *JUnitReporter) ReportSummary(result *engine.SuiteResult) {
	suite := junitSuite{
		Name:     result.SuiteName,
		Tests:    len(result.Results),
		Failures: result.FailCount,
		Skipped:  result.SkipCount,
		Time:     fmt.Sprintf("%.3f", result.Duration.Seconds()),
	}

	for _, tr := range result.Results {
		c := junitCase{
			Name:      tr.TestCase.Name,
			ClassName: tr.TestCase.ID,
			Time:      fmt.Sprintf("%.3f", tr.Duration.Seconds()),
		}
		switch {
		case tr.Skipped:
			c.Skipped = &junitMessage{Message: tr.SkipReason}
		case !tr.Passed && tr.Error != nil:
			f := &junitFailure{Message: tr.Error.Error()}
			for _, sr := range tr.StepResults {
				if !sr.Passed {
					f.Detail += fmt.Sprintf("Step %d (%s): %v\n", sr.StepIndex+1, sr.Step.Action, sr.Error)
				}
			}
			c.Failure = f
		}
		suite.Cases = append(suite.Cases, c)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		fmt.Fprintf(r.writer, "<!-- failed to marshal: %s -->\n", err)
		return
	}
	fmt.Fprint(r.writer, xml.Header)
	fmt.Fprintln(r.writer, string(data))
}

var (
	_ Reporter = (*TextReporter)(nil)
	_ Reporter = (*JSONReporter)(nil)
	_ Reporter = (*JUnitReporter)(nil)
)
