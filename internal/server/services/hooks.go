package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/repoboard/internal/logging"
	"github.com/dmitrijs2005/repoboard/internal/server/models"
)

// Hook cleans up data that belongs to a deleted widget.
type Hook func(ctx context.Context, w *models.Widget) error

type namedHook struct {
	name string
	fn   Hook
}

// HookRegistry holds post-delete hooks per widget type. Hooks are isolated:
// a failing or panicking hook is logged and never affects the others.
type HookRegistry struct {
	mu     sync.RWMutex
	hooks  map[string][]namedHook
	logger logging.Logger
}

func NewHookRegistry(logger logging.Logger) *HookRegistry {
	return &HookRegistry{hooks: map[string][]namedHook{}, logger: logger.With("module", "hooks")}
}

func (r *HookRegistry) Register(widgetType, name string, hook Hook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[widgetType] = append(r.hooks[widgetType], namedHook{name: name, fn: hook})
}

// Run executes the hooks registered for w.Type in registration order and
// returns the number that failed.
func (r *HookRegistry) Run(ctx context.Context, w *models.Widget) int {
	r.mu.RLock()
	hooks := append([]namedHook(nil), r.hooks[w.Type]...)
	r.mu.RUnlock()

	failed := 0
	for _, h := range hooks {
		if err := r.runOne(ctx, h, w); err != nil {
			failed++
			r.logger.Warn(ctx, "post-delete hook failed",
				"hook", h.name, "widget_id", w.ID, "widget_type", w.Type, "error", err)
		}
	}
	return failed
}

func (r *HookRegistry) runOne(ctx context.Context, h namedHook, w *models.Widget) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h.fn(ctx, w)
}
