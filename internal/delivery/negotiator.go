// ABOUTME: Resolves a username to the OTP delivery channels available for it
// ABOUTME: Keeps a single-entry cache per username entry and collapses duplicate fetches

package delivery

import (
	"context"
	"log/slog"
	"sync"

	"github.com/doklink/doklink-auth/internal/autherr"
	"github.com/doklink/doklink-auth/internal/models"
	"golang.org/x/sync/singleflight"
)

// OptionsFetcher queries the backend for a username's delivery channels
type OptionsFetcher interface {
	GetUsernameOTPOptions(ctx context.Context, username string) ([]models.DeliveryOption, error)
}

// Negotiator caches the last fetched option set. It is safe for concurrent
// use because fetches run off the UI event loop.
type Negotiator struct {
	fetcher OptionsFetcher
	sfGroup singleflight.Group

	mu       sync.RWMutex
	username string
	options  []models.DeliveryOption
	cached   bool
	gen      uint64
}

// NewNegotiator creates a Negotiator backed by fetcher
func NewNegotiator(fetcher OptionsFetcher) *Negotiator {
	return &Negotiator{fetcher: fetcher}
}

// Options returns the delivery channels for username, fetching them unless
// the cached entry belongs to the same username.
func (n *Negotiator) Options(ctx context.Context, username string) ([]models.DeliveryOption, error) {
	n.mu.RLock()
	if n.cached && n.username == username {
		opts := cloneOptions(n.options)
		n.mu.RUnlock()
		slog.Debug("Delivery options cache hit")
		return opts, nil
	}
	gen := n.gen
	n.mu.RUnlock()

	// The fetch is shared by every caller for username, so it must outlive
	// any one caller's cancellation. Each caller still stops waiting on its own ctx.
	ch := n.sfGroup.DoChan(username, func() (interface{}, error) {
		return n.fetcher.GetUsernameOTPOptions(context.WithoutCancel(ctx), username)
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, autherr.Wrap(autherr.NetworkError, "Request canceled", ctx.Err())
	}
	if res.Err != nil {
		return nil, res.Err
	}
	shared := res.Shared

	opts, _ := res.Val.([]models.DeliveryOption)
	if len(opts) == 0 {
		return nil, autherr.New(autherr.NotFound, "No verification channels are available for this account")
	}
	slog.Debug("Delivery options fetched", "count", len(opts), "shared", shared)

	n.mu.Lock()
	// An Invalidate during the fetch means the identifier changed; do not cache.
	if n.gen == gen {
		n.username = username
		n.options = cloneOptions(opts)
		n.cached = true
	}
	n.mu.Unlock()

	return cloneOptions(opts), nil
}

// Invalidate drops the cached entry so the next call re-fetches
func (n *Negotiator) Invalidate() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.gen++
	n.username = ""
	n.options = nil
	n.cached = false
}

// Cached returns the cached username and options, if any
func (n *Negotiator) Cached() (string, []models.DeliveryOption, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.username, cloneOptions(n.options), n.cached
}

// Contains reports whether channel is one of options
func Contains(options []models.DeliveryOption, channel models.Channel) bool {
	for _, opt := range options {
		if opt.Channel == channel {
			return true
		}
	}
	return false
}

func cloneOptions(opts []models.DeliveryOption) []models.DeliveryOption {
	if opts == nil {
		return nil
	}
	out := make([]models.DeliveryOption, len(opts))
	copy(out, opts)
	return out
}
