package common

import "fmt"

var (
	ErrInvalidRollNumber   = fmt.Errorf("invalid roll number")
	ErrInvalidFileSets     = fmt.Errorf("exactly three file sets are required")
	ErrSessionLocked       = fmt.Errorf("session is locked to another roll number")
	ErrProbeAlreadyRunning = fmt.Errorf("file host probe has already started")
	ErrNoDownloadsFound    = fmt.Errorf("no downloads found")
)
