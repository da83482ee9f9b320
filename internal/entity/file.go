package entity

// FileSet is one of the three externally hosted assignment files.
type FileSet struct {
	ID   string `yaml:"id" json:"id"`     // Short set letter, e.g. "A"
	Name string `yaml:"name" json:"name"` // File name offered to the student, e.g. "Set A.pdf"
	URL  string `yaml:"url" json:"url"`   // Where the file host serves the PDF
}

// Assignment is the result of resolving a roll number through the assignment rule.
type Assignment struct {
	RollNumber RollNumber
	Cycle      int
	Set        FileSet
}

type FileStatus struct {
	Set        FileSet `json:"set"`
	StatusCode int     `json:"statusCode"`
	Available  bool    `json:"available"`
	Error      string  `json:"error,omitempty"`
}
