// Package ledger holds the vote state machine. A user has at most one vote
// per message; requesting the same kind again removes it and requesting the
// opposite kind replaces it.
package ledger

import (
	"fmt"

	"anoa.com/feedbackportal/internal/entity"
	"anoa.com/feedbackportal/pkg/apperror"
)

type State int

const (
	NoVote State = iota
	Upvoted
	Downvoted
)

func (s State) String() string {
	switch s {
	case Upvoted:
		return "upvoted"
	case Downvoted:
		return "downvoted"
	default:
		return "none"
	}
}

// Kind returns the stored vote kind for s, false for NoVote.
func (s State) Kind() (entity.VoteKind, bool) {
	switch s {
	case Upvoted:
		return entity.VoteUp, true
	case Downvoted:
		return entity.VoteDown, true
	default:
		return "", false
	}
}

func StateOf(kind entity.VoteKind) State {
	switch kind {
	case entity.VoteUp:
		return Upvoted
	case entity.VoteDown:
		return Downvoted
	default:
		return NoVote
	}
}

type Outcome string

const (
	Applied Outcome = "applied"
	Removed Outcome = "removed"
)

func Transition(current State, requested entity.VoteKind) (State, Outcome, error) {
	if !requested.Valid() {
		return current, "", apperror.Wrap(apperror.ErrInvalidInput, fmt.Sprintf("unknown vote kind %q", requested))
	}

	target := StateOf(requested)
	if current == target {
		return NoVote, Removed, nil
	}
	return target, Applied, nil
}

func Score(up, down int64) int64 {
	return up - down
}
