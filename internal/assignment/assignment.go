// Package assignment maps roll numbers to one of the three assignment files.
// Every consumer (ledger, pages, admin download) resolves files here.
package assignment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jgivc/assignfetch/internal/common"
	"github.com/jgivc/assignfetch/internal/entity"
)

const (
	MinRollNumber entity.RollNumber = 1
	MaxRollNumber entity.RollNumber = 50

	SetCount = 3
)

type Rule struct {
	sets [SetCount]entity.FileSet
}

func NewRule(sets []entity.FileSet) (*Rule, error) {
	if len(sets) != SetCount {
		return nil, fmt.Errorf("got %d sets: %w", len(sets), common.ErrInvalidFileSets)
	}

	r := &Rule{}
	for i, set := range sets {
		if set.Name == "" {
			return nil, fmt.Errorf("set %d has no name: %w", i+1, common.ErrInvalidFileSets)
		}

		r.sets[i] = set
	}

	return r, nil
}

// Cycle returns the 1-based set index for roll.
func Cycle(roll entity.RollNumber) int {
	return ((int(roll) - 1) % SetCount) + 1
}

func Validate(roll entity.RollNumber) error {
	if roll < MinRollNumber || roll > MaxRollNumber {
		return fmt.Errorf("%d is outside %d..%d: %w", roll, MinRollNumber, MaxRollNumber, common.ErrInvalidRollNumber)
	}

	return nil
}

// ParseRollNumber accepts "5", "05" or " 5 ". Anything else is ErrInvalidRollNumber.
func ParseRollNumber(s string) (entity.RollNumber, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q: %w", s, common.ErrInvalidRollNumber)
	}

	roll := entity.RollNumber(n)
	if err := Validate(roll); err != nil {
		return 0, err
	}

	return roll, nil
}

func (r *Rule) Resolve(roll entity.RollNumber) (*entity.Assignment, error) {
	if err := Validate(roll); err != nil {
		return nil, err
	}

	cycle := Cycle(roll)

	return &entity.Assignment{
		RollNumber: roll,
		Cycle:      cycle,
		Set:        r.sets[cycle-1],
	}, nil
}

// Set returns the set for a 1-based cycle.
func (r *Rule) Set(cycle int) (entity.FileSet, bool) {
	if cycle < 1 || cycle > SetCount {
		return entity.FileSet{}, false
	}

	return r.sets[cycle-1], true
}

func (r *Rule) Sets() []entity.FileSet {
	sets := make([]entity.FileSet, SetCount)
	copy(sets, r.sets[:])

	return sets
}

// RollNumbers returns every valid roll number in order.
func RollNumbers() []entity.RollNumber {
	rolls := make([]entity.RollNumber, 0, MaxRollNumber-MinRollNumber+1)
	for roll := MinRollNumber; roll <= MaxRollNumber; roll++ {
		rolls = append(rolls, roll)
	}

	return rolls
}
