package scenario

// Case is one test case within a scenario. Exactly one of Command or Prompt
// is set.
type Case struct {
	Command string `yaml:"command,omitempty"`
	Tool    string `yaml:"tool,omitempty"`
	Path    string `yaml:"path,omitempty"`
	Prompt  string `yaml:"prompt,omitempty"`
	Expect  string `yaml:"expect"`
	// Rule optionally pins the rule name expected to decide the case.
	Rule string `yaml:"rule,omitempty"`
}

// Scenario is a named collection of gate test cases.
type Scenario struct {
	Name string `yaml:"name"`
	// Mode overrides the prompt gate mode for every case in the file.
	Mode  string `yaml:"mode,omitempty"`
	Cases []Case `yaml:"cases"`
}

// CaseResult is the outcome of evaluating one test case.
type CaseResult struct {
	Index    int    `json:"index"`
	Passed   bool   `json:"passed"`
	Gate     string `json:"gate"`
	Tool     string `json:"tool,omitempty"`
	Input    string `json:"input"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
	Rule     string `json:"rule,omitempty"`
	Reason   string `json:"reason,omitempty"`
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
