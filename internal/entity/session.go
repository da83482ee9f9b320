package entity

import "github.com/jgivc/assignfetch/internal/common"

// SessionLock ties a client to the first roll number it downloaded with.
// It only drives the student page; nothing on the server trusts it.
type SessionLock struct {
	Roll RollNumber
}

func (l SessionLock) IsLocked() bool {
	return l.Roll != 0
}

// Allows reports whether roll may be used by this client.
func (l SessionLock) Allows(roll RollNumber) bool {
	return !l.IsLocked() || l.Roll == roll
}

// Lock returns the lock held after a download with roll.
func (l SessionLock) Lock(roll RollNumber) (SessionLock, error) {
	if !l.Allows(roll) {
		return l, common.ErrSessionLocked
	}

	return SessionLock{Roll: roll}, nil
}

func (l SessionLock) Reset() SessionLock {
	return SessionLock{}
}
