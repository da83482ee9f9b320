package entity

import "fmt"

// RollNumber identifies a student. Valid values are 1..50.
type RollNumber int

func (r RollNumber) String() string {
	return fmt.Sprintf("%02d", int(r))
}
