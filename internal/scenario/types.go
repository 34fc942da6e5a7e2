package scenario

// Case is one instruction and the expected dry-run result: an operation id,
// "unrecognized", "path_escape", or "destructive_intent".
type Case struct {
	Instruction string `yaml:"instruction"`
	Expect      string `yaml:"expect"`
}

// Scenario is a named collection of classification test cases.
type Scenario struct {
	Name  string `yaml:"name"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index       int    `json:"index"`
	Passed      bool   `json:"passed"`
	Instruction string `json:"instruction"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
	Rule        string `json:"rule,omitempty"`
	Detail      string `json:"detail,omitempty"`
}

// RunResult is the outcome of running all cases in one scenario file.
type RunResult struct {
	File   string       `json:"file"`
	Name   string       `json:"name"`
	Total  int          `json:"total"`
	Passed int          `json:"passed"`
	Failed int          `json:"failed"`
	Cases  []CaseResult `json:"cases"`
}
