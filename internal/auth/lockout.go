package auth

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"assetdesk.com/internal/model"
	"assetdesk.com/internal/store"
)

// LockoutTracker counts consecutive authentication failures per account and
// applies a time-boxed lock once the threshold is reached. Callers check
// user.IsLocked() before verifying credentials; the tracker only runs on the
// outcome of a verification that was allowed to proceed.
type LockoutTracker struct {
	store     *store.UserStore
	threshold int
	duration  time.Duration
}

func NewLockoutTracker(s *store.UserStore, threshold int, duration time.Duration) *LockoutTracker {
	return &LockoutTracker{
		store:     s,
		threshold: threshold,
		duration:  duration,
	}
}

// RegisterFailure records a failed password check. A failure after a lock has
// expired starts a fresh cycle at one attempt; otherwise the counter grows and
// the lock is set when it reaches the threshold. Persistence is best-effort:
// the caller returns invalid-credentials regardless.
func (t *LockoutTracker) RegisterFailure(ctx context.Context, user *model.User) {
	now := time.Now()
	if user.LockUntil != nil && !user.LockUntil.After(now) {
		user.LoginAttempts = 1
		user.LockUntil = nil
	} else {
		user.LoginAttempts++
		if user.LoginAttempts >= t.threshold {
			until := now.Add(t.duration)
			user.LockUntil = &until
		}
	}

	if err := t.store.SaveLoginState(ctx, user); err != nil {
		log.Printf("Warning: failed to persist login failure for user %d: %v", user.ID, err)
	}
}

// RegisterSuccess clears the failure counter and lock and stamps last login.
func (t *LockoutTracker) RegisterSuccess(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.LoginAttempts = 0
	user.LockUntil = nil
	user.LastLogin = &now
	return t.store.SaveLoginState(ctx, user)
}
