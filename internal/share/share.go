// Package share publishes optimization results under short-lived links.
package share

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/piwi3910/PanelCut/internal/model"
)

// DefaultTTL is how long a shared result stays readable.
const DefaultTTL = 7 * 24 * time.Hour

// ErrNotFound is returned for unknown and expired share ids.
var ErrNotFound = errors.New("share: expired or invalid link")

// Ticket identifies a stored result.
type Ticket struct {
	ID        string    `json:"id"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Shared is a stored result as returned by Get.
type Shared struct {
	Result      model.OptimizationResult `json:"result"`
	ProjectName string                   `json:"projectName,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	ExpiresAt   time.Time                `json:"expiresAt"`
}

func (s Shared) expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Store persists shared results. Implementations are safe for concurrent use.
type Store interface {
	Put(ctx context.Context, result model.OptimizationResult, projectName string) (Ticket, error)
	Get(ctx context.Context, id string) (Shared, error)
}

// Option configures a store.
type Option func(*options)

type options struct {
	ttl   time.Duration
	now   func() time.Time
	newID func() string
}

func defaultOptions() options {
	return options{ttl: DefaultTTL, now: time.Now, newID: uuid.NewString}
}

// WithTTL sets how long entries live. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func (o options) stamp(result model.OptimizationResult, projectName string) Shared {
	now := o.now().UTC()
	return Shared{
		Result:      result,
		ProjectName: projectName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(o.ttl),
	}
}

// validID rejects ids that were not produced by a store. uuid.Parse accepts
// several encodings, so only the canonical form is allowed.
func validID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.String() == id
}
