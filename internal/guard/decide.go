package guard

import (
	"path"

	"checklist/internal/session/models"
)

type Outcome int

const (
	// OutcomeLoading shows the blocking progress indicator.
	OutcomeLoading Outcome = iota
	OutcomeRender
	OutcomeRedirect
)

func (o Outcome) String() string {
	switch o {
	case OutcomeLoading:
		return "loading"
	case OutcomeRender:
		return "render"
	case OutcomeRedirect:
		return "redirect"
	default:
		return "unknown"
	}
}

type Decision struct {
	Outcome    Outcome
	RedirectTo string
}

// Decide is the gating rule for one session snapshot and location. It never
// redirects while the session is loading, and never redirects away from the
// login entry point itself.
func Decide(s models.Session, currentPath, loginPath string) Decision {
	if s.IsLoading {
		return Decision{Outcome: OutcomeLoading}
	}
	if s.IsAuthenticated {
		return Decision{Outcome: OutcomeRender}
	}
	if samePath(currentPath, loginPath) {
		return Decision{Outcome: OutcomeRender}
	}
	return Decision{Outcome: OutcomeRedirect, RedirectTo: loginPath}
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return path.Clean("/"+a) == path.Clean("/"+b)
}
