// Package syncengine replays the mutation queue against the remote API.
// One Drain call walks the pending/failed working set in FIFO order,
// classifies each HTTP outcome and records it on the queue row. A transport
// failure aborts the whole run: the in-flight row reverts to pending and
// everything behind it is left untouched for the next drain.
package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldops/fieldsync/internal/apiclient"
	"github.com/fieldops/fieldsync/internal/connectivity"
	"github.com/fieldops/fieldsync/internal/diag"
	"github.com/fieldops/fieldsync/internal/events"
	"github.com/fieldops/fieldsync/internal/features"
	"github.com/fieldops/fieldsync/internal/models"
	"github.com/fieldops/fieldsync/internal/store"
)

// maxAttempts bounds tries per mutation per drain: the initial attempt plus
// two retries. A drain only runs once connectivity is believed restored, so
// the budget exists to absorb brief 429/5xx blips, not to back off.
const maxAttempts = 3

// defaultRetryDelay is the fixed inline pause between attempts.
const defaultRetryDelay = 500 * time.Millisecond

// conflictStatuses are the codes meaning the server has authoritatively
// rejected the mutation given its current state: stale resource, permission
// revoked, resource deleted, version conflict. Never auto-retried.
var conflictStatuses = map[int]bool{
	400: true,
	403: true,
	404: true,
	409: true,
}

// retryable reports whether the status is a temporary server-side condition
// worth replaying with the same payload.
func retryable(code int) bool {
	return code == 429 || code >= 500
}

// Result counts terminal transitions reached during one Drain call.
// Conflict and failed rows from earlier runs are not re-counted.
type Result struct {
	Synced    int
	Failed    int
	Conflicts int

	// Aborted is set when a transport-level failure stopped the run early.
	Aborted bool
}

// Engine drains the mutation queue.
type Engine struct {
	store   *store.Store
	client  *apiclient.Client
	bus     *events.Bus
	tracker *connectivity.Tracker
	log     *diag.Logger

	// retryDelay maps an attempt number (1-based) to the pause before the
	// next attempt. Injected so tests run the retry loop without waiting.
	retryDelay func(attempt int) time.Duration
	sleep      func(d time.Duration)
}

// New creates a sync engine.
func New(s *store.Store, client *apiclient.Client, bus *events.Bus, tracker *connectivity.Tracker, log *diag.Logger) *Engine {
	return &Engine{
		store:      s,
		client:     client,
		bus:        bus,
		tracker:    tracker,
		log:        log,
		retryDelay: func(int) time.Duration { return defaultRetryDelay },
		sleep:      time.Sleep,
	}
}

// Drain replays the queue in FIFO order. The returned error reports local
// storage trouble only; remote outcomes, including a total network loss,
// are expressed through Result.
func (e *Engine) Drain(ctx context.Context) (Result, error) {
	var result Result

	mutations, err := e.store.PendingMutations()
	if err != nil {
		return result, fmt.Errorf("load working set: %w", err)
	}

	for _, m := range mutations {
		if err := e.store.UpdateMutationStatus(m.ID, models.StatusSyncing, ""); err != nil {
			return result, fmt.Errorf("mark syncing %d: %w", m.ID, err)
		}

		outcome, err := e.replay(ctx, m)
		if err != nil {
			return result, err
		}
		if outcome == outcomeAborted {
			result.Aborted = true
			return result, nil
		}

		switch outcome {
		case outcomeSynced:
			result.Synced++
		case outcomeConflict:
			result.Conflicts++
		case outcomeFailed:
			result.Failed++
		}
	}

	return result, nil
}

// truncateBody bounds server response bodies captured into the debug log.
func truncateBody(body []byte) string {
	const max = 512
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}

type outcome int

const (
	outcomeSynced outcome = iota
	outcomeConflict
	outcomeFailed
	outcomeAborted
)

// replay attempts one mutation up to maxAttempts times and records the
// terminal state on its queue row.
func (e *Engine) replay(ctx context.Context, m models.PendingMutation) (outcome, error) {
	for attempt := 1; ; attempt++ {
		resp, err := e.client.Do(ctx, string(m.Method), m.URL, m.Body)
		if err != nil {
			// Transport failure: the server may never have seen this
			// mutation. Revert to pending so the next drain retries it,
			// and stop the run so later rows keep their order.
			if revertErr := e.store.UpdateMutationStatus(m.ID, models.StatusPending, ""); revertErr != nil {
				return 0, fmt.Errorf("revert mutation %d: %w", m.ID, revertErr)
			}
			e.tracker.ReportLoss()
			e.log.Warn(diag.CategorySync, "drain aborted", map[string]any{
				"mutation_id": m.ID, "error": err.Error(),
			})
			return outcomeAborted, nil
		}

		e.tracker.ReportRestored()
		code := resp.StatusCode

		if resp.OK() {
			if err := e.store.UpdateMutationStatus(m.ID, models.StatusSynced, ""); err != nil {
				return 0, fmt.Errorf("mark synced %d: %w", m.ID, err)
			}
			// The accepted write makes cached reads of this resource stale.
			if err := e.store.InvalidateEndpointCache(m.URL); err != nil {
				e.log.Warn(diag.CategoryCache, "invalidate after sync failed", map[string]any{
					"mutation_id": m.ID, "url": m.URL, "error": err.Error(),
				})
			}
			e.bus.Publish(events.SyncNotice{EntityType: m.EntityType, EntityID: m.EntityID})
			return outcomeSynced, nil
		}

		if conflictStatuses[code] {
			msg := fmt.Sprintf("HTTP %d", code)
			if err := e.store.UpdateMutationStatus(m.ID, models.StatusConflict, msg); err != nil {
				return 0, fmt.Errorf("mark conflict %d: %w", m.ID, err)
			}
			detail := map[string]any{
				"mutation_id": m.ID, "entity_id": m.EntityID, "status": code,
			}
			if features.IsEnabled(features.VerboseDiag.Name) {
				detail["response"] = truncateBody(resp.Body)
			}
			e.log.Warn(diag.CategorySync, "mutation conflict", detail)
			return outcomeConflict, nil
		}

		if retryable(code) {
			if err := e.store.IncrementRetryCount(m.ID); err != nil {
				return 0, fmt.Errorf("increment retry %d: %w", m.ID, err)
			}
			if attempt < maxAttempts {
				e.sleep(e.retryDelay(attempt))
				continue
			}
			msg := fmt.Sprintf("HTTP %d after %d retries", code, attempt)
			if err := e.store.UpdateMutationStatus(m.ID, models.StatusFailed, msg); err != nil {
				return 0, fmt.Errorf("mark failed %d: %w", m.ID, err)
			}
			return outcomeFailed, nil
		}

		// Anything else is terminal without retries.
		msg := fmt.Sprintf("HTTP %d", code)
		if err := e.store.UpdateMutationStatus(m.ID, models.StatusFailed, msg); err != nil {
			return 0, fmt.Errorf("mark failed %d: %w", m.ID, err)
		}
		return outcomeFailed, nil
	}
}
