package state

import (
	"fmt"
	"slices"
	"time"
)

// Step identifies where a user is in the /stats conversation.
type Step string

const (
	// StepIdle indicates there is no active conversation with the user.
	StepIdle Step = "idle"
	// StepAwaitingSymbolChoice waits for a pair to be picked from the keyboard.
	StepAwaitingSymbolChoice Step = "awaiting_symbol"
	// StepAwaitingDayCount waits for the number of days to chart.
	StepAwaitingDayCount Step = "awaiting_days"
)

// Session stores conversation progress for one user.
type Session struct {
	UserID int64
	Step   Step
	// Symbol is set only while Step is StepAwaitingDayCount.
	Symbol string
	// Pairs is the list offered by the last /stats keyboard.
	Pairs     []string
	UpdatedAt time.Time
}

// Clone returns a deep copy of the session.
func (s Session) Clone() Session {
	s.Pairs = slices.Clone(s.Pairs)
	return s
}

// Validate reports whether the session may be stored: Symbol is set only while awaiting the day count.
func (s Session) Validate() error {
	switch s.Step {
	case StepAwaitingSymbolChoice:
		if s.Symbol != "" {
			return fmt.Errorf("state: symbol %q set while %s", s.Symbol, s.Step)
		}
	case StepAwaitingDayCount:
		if s.Symbol == "" {
			return fmt.Errorf("state: symbol missing while %s", s.Step)
		}
	default:
		return fmt.Errorf("state: step %q cannot be stored", s.Step)
	}
	return nil
}

// HasPair reports whether symbol was offered to the user.
func (s Session) HasPair(symbol string) bool {
	return slices.Contains(s.Pairs, symbol)
}

// Store is the session storage used by the conversation orchestrator.
// Every method is atomic for a given user id.
type Store interface {
	Get(userID int64) (Session, bool)
	Put(s Session)
	Remove(userID int64)
	Len() int
	// Sweep removes sessions last updated before cutoff and returns how many were dropped.
	Sweep(cutoff time.Time) int
}
