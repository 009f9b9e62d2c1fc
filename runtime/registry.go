package runtime

import (
	"log/slog"
	"private-chat/contract"
	"private-chat/domain"

	"github.com/samber/lo"
)

// Registry maps a username to its live sessions.
//
// It has no lock: the state actor is its only owner and every method is
// called from the actor goroutine. It never closes a session itself, a
// rejected session is handed back to the caller.
type Registry struct {
	log                *slog.Logger
	maxSessionsPerUser int
	sessions           map[string][]contract.Session
}

func NewRegistry(log *slog.Logger, maxSessionsPerUser int) *Registry {
	return &Registry{
		log:                log,
		maxSessionsPerUser: maxSessionsPerUser,
		sessions:           make(map[string][]contract.Session),
	}
}

// AddSession accepts the session unless the user already reached the cap.
// Adding a handle that is already registered is accepted without duplicating it.
func (r *Registry) AddSession(user string, session contract.Session) contract.AddSessionResult {
	current, ok := r.sessions[user]
	if !ok {
		r.sessions[user] = []contract.Session{session}
		return contract.AddSessionResult{}
	}
	if lo.Contains(current, session) {
		return contract.AddSessionResult{}
	}
	if len(current) >= r.maxSessionsPerUser {
		return contract.AddSessionResult{Rejected: session}
	}
	r.sessions[user] = append(current, session)
	return contract.AddSessionResult{}
}

// RemoveSession removes the handle and drops the user once no session is left.
// Unknown users or sessions are ignored, disconnects may race with cleanup.
func (r *Registry) RemoveSession(user string, session contract.Session) {
	current, ok := r.sessions[user]
	if !ok {
		return
	}
	remaining := lo.Without(current, session)
	if len(remaining) == 0 {
		delete(r.sessions, user)
		return
	}
	r.sessions[user] = remaining
}

// Fanout pushes out to every session of user and returns how many accepted it.
// A failing session never prevents delivery to the others.
func (r *Registry) Fanout(user string, out domain.Outbound) int {
	delivered := 0
	for _, session := range r.sessions[user] {
		if err := session.Send(out); err != nil {
			r.log.Warn("Failed to push to session", "user", user, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (r *Registry) Sessions(user string) []contract.Session {
	return r.sessions[user]
}

// Users is the number of users with at least one live session.
func (r *Registry) Users() int {
	return len(r.sessions)
}

// Count is the number of live sessions across all users.
func (r *Registry) Count() int {
	return lo.SumBy(lo.Values(r.sessions), func(s []contract.Session) int { return len(s) })
}
