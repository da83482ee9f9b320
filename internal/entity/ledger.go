package entity

type LedgerEntry struct {
	RollNumber RollNumber `json:"rollNumber" yaml:"roll"`
	Count      int64      `json:"count" yaml:"count"`
	File       string     `json:"file" yaml:"file"`
}

// Receipt is returned for every recorded download.
type Receipt struct {
	RollNumber     RollNumber
	File           string
	TotalDownloads int64
}

type SetTotal struct {
	Set       FileSet `json:"set"`
	Downloads int64   `json:"downloads"`
}

type RollRow struct {
	RollNumber RollNumber `json:"rollNumber"`
	Cycle      int        `json:"cycle"`
	File       string     `json:"file"`
	Count      int64      `json:"count"`
}

// Summary aggregates the ledger for the admin view.
type Summary struct {
	TotalDownloads int64      `json:"totalDownloads"`
	ActiveRolls    int        `json:"activeRolls"`
	Sets           []SetTotal `json:"sets"`
	Rolls          []RollRow  `json:"rolls"`
}

type StatsDump struct {
	CreatedAt string         `yaml:"created_at"`
	Entries   []*LedgerEntry `yaml:"entries"`
}
