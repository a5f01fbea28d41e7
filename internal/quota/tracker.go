// Package quota meters capabilities that carry a hard usage ceiling.
package quota

import (
	"sync"

	"github.com/gcbaptista/resumatch/config"
	internalErrors "github.com/gcbaptista/resumatch/internal/errors"
	"github.com/gcbaptista/resumatch/model"
)

// Tracker counts usage per resource against fixed limits. It is safe for concurrent use.
type Tracker struct {
	mu     sync.Mutex
	order  []model.Resource
	limits map[model.Resource]int64
	used   map[model.Resource]int64
}

// NewTracker creates a tracker with the limits from settings.
func NewTracker(settings config.QuotaSettings) *Tracker {
	t := &Tracker{
		limits: make(map[model.Resource]int64),
		used:   make(map[model.Resource]int64),
	}
	t.setLimit(model.ResourceOCRPages, settings.OCRPages, config.DefaultOCRPages)
	t.setLimit(model.ResourceTriggers, settings.TriggerInvocations, config.DefaultTriggerInvocations)
	t.setLimit(model.ResourceStorageBytes, settings.StorageBytes, config.DefaultStorageBytes)
	return t
}

func (t *Tracker) setLimit(resource model.Resource, limit, fallback int64) {
	if limit <= 0 {
		limit = fallback
	}
	t.order = append(t.order, resource)
	t.limits[resource] = limit
}

// Check returns a CapacityError if n more units of resource would exceed its limit.
// Unknown resources are unmetered.
func (t *Tracker) Check(resource model.Resource, n int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.check(resource, n)
}

// Reserve records n units of resource, or returns a CapacityError and records nothing.
func (t *Tracker) Reserve(resource model.Resource, n int64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.check(resource, n); err != nil {
		return err
	}
	if _, ok := t.limits[resource]; ok {
		t.used[resource] += n
	}
	return nil
}

// Release gives back n units of resource, e.g. after a stored document is deleted.
func (t *Tracker) Release(resource model.Resource, n int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.used[resource] -= n
	if t.used[resource] < 0 {
		t.used[resource] = 0
	}
}

// Set overwrites the recorded usage of resource, e.g. when restoring from disk.
func (t *Tracker) Set(resource model.Resource, used int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if used < 0 {
		used = 0
	}
	t.used[resource] = used
}

func (t *Tracker) check(resource model.Resource, n int64) error {
	limit, ok := t.limits[resource]
	if !ok {
		return nil
	}
	used := t.used[resource]
	if used+n > limit {
		return internalErrors.NewCapacityError(string(resource), used, n, limit)
	}
	return nil
}

// Usage returns a snapshot of every metered resource.
func (t *Tracker) Usage() model.UsageReport {
	t.mu.Lock()
	defer t.mu.Unlock()

	report := model.UsageReport{Resources: make([]model.ResourceUsage, 0, len(t.order))}
	for _, r := range t.order {
		limit := t.limits[r]
		used := t.used[r]
		remaining := limit - used
		if remaining < 0 {
			remaining = 0
		}
		report.Resources = append(report.Resources, model.ResourceUsage{
			Resource:  r,
			Used:      used,
			Limit:     limit,
			Remaining: remaining,
		})
	}
	return report
}
