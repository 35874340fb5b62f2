// Package checker runs one what's-new check cycle for a repository and
// tracks whether its notification is still showing.
package checker

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hay-kot/whatsnew/internal/core/logging"
	"github.com/hay-kot/whatsnew/internal/whatsnew/api"
)

// Fetcher retrieves the latest update for a repository. A nil response with
// a nil error means there are no updates.
type Fetcher interface {
	FetchLatest(ctx context.Context, repositoryID string) (*api.Response, error)
}

// Dismissals is the part of the dismissal store the checker needs.
type Dismissals interface {
	IsDismissed(ctx context.Context, repositoryID, updateID string) bool
	MarkDismissed(ctx context.Context, repositoryID, updateID string)
	CleanupOldDismissals(ctx context.Context, repositoryID string)
}

// State is whether a session's notification is showing.
type State int

const (
	StateHidden State = iota
	StateVisible
)

func (s State) String() string {
	if s == StateVisible {
		return "visible"
	}
	return "hidden"
}

// Checker runs check cycles.
type Checker struct {
	fetcher    Fetcher
	dismissals Dismissals
	log        zerolog.Logger
}

// New creates a Checker.
func New(fetcher Fetcher, dismissals Dismissals) *Checker {
	return &Checker{
		fetcher:    fetcher,
		dismissals: dismissals,
		log:        logging.Component("checker"),
	}
}

// Check runs one cycle for the repository: evict stale dismissals, fetch the
// latest update and show it unless it was already dismissed. Every failure
// ends in a hidden session. If ctx is done by the time the fetch returns the
// result is discarded.
func (c *Checker) Check(ctx context.Context, repositoryID string) *Session {
	ctx = logging.WithRepository(ctx, repositoryID)
	s := &Session{repositoryID: repositoryID, dismissals: c.dismissals}

	c.dismissals.CleanupOldDismissals(ctx, repositoryID)

	resp, err := c.fetcher.FetchLatest(ctx, repositoryID)
	if ctx.Err() != nil {
		c.log.Debug().Ctx(ctx).Msg("check cancelled, discarding result")
		return s
	}
	if err != nil {
		c.log.Warn().Ctx(ctx).Err(err).Msg("failed to fetch latest update")
		return s
	}

	latest := resp.Latest()
	if latest == nil {
		c.log.Debug().Ctx(ctx).Msg("no updates")
		return s
	}
	s.response = resp

	if c.dismissals.IsDismissed(ctx, repositoryID, latest.ID) {
		c.log.Debug().Ctx(logging.WithUpdateID(ctx, latest.ID)).Msg("latest update already dismissed")
		return s
	}

	s.update = latest
	s.state = StateVisible
	return s
}

// CheckAll runs an independent cycle for each repository, in order.
func (c *Checker) CheckAll(ctx context.Context, repositoryIDs []string) []*Session {
	sessions := make([]*Session, 0, len(repositoryIDs))
	for _, id := range repositoryIDs {
		sessions = append(sessions, c.Check(ctx, id))
	}
	return sessions
}

// Session is the outcome of one check cycle plus the user's response to it.
type Session struct {
	repositoryID string
	dismissals   Dismissals

	mu       sync.Mutex
	state    State
	update   *api.Update
	response *api.Response
}

// RepositoryID returns the repository this session was checked for.
func (s *Session) RepositoryID() string { return s.repositoryID }

// State reports whether the notification is showing.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Visible is shorthand for State() == StateVisible.
func (s *Session) Visible() bool { return s.State() == StateVisible }

// Update returns the candidate update, or nil when nothing was found. It
// stays available after the session is dismissed.
func (s *Session) Update() *api.Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.update
}

// RepositoryName returns the display name from the response metadata,
// falling back to the repository id.
func (s *Session) RepositoryName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name := s.response.RepositoryName(s.update); name != "" {
		return name
	}
	return s.repositoryID
}

// Dismiss records the update as dismissed and hides the notification. Only
// the first call on a visible session has any effect.
func (s *Session) Dismiss(ctx context.Context) {
	s.hide(ctx)
}

// View is called when the user follows the update's link. It counts as a
// dismissal.
func (s *Session) View(ctx context.Context) {
	s.hide(ctx)
}

func (s *Session) hide(ctx context.Context) {
	s.mu.Lock()
	if s.state != StateVisible || s.update == nil {
		s.mu.Unlock()
		return
	}
	s.state = StateHidden
	id := s.update.ID
	s.mu.Unlock()

	s.dismissals.MarkDismissed(ctx, s.repositoryID, id)
}
