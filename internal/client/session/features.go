package session

import (
	"fmt"

	"github.com/dmitrijs2005/repoboard/internal/common"
	"github.com/dmitrijs2005/repoboard/internal/widgets"
	"github.com/google/uuid"
)

// ToggleTask flips the done flag of task taskID in task widget id. The
// change shows at once and is saved after the debounce window, so quick
// successive toggles cost one write.
func (s *BoardSession) ToggleTask(id, taskID string) error {
	return s.editTasks(id, func(items []any) ([]any, error) {
		for i, it := range items {
			m, ok := it.(map[string]any)
			if !ok || m["id"] != taskID {
				continue
			}
			done, _ := m["done"].(bool)
			m["done"] = !done
			items[i] = m
			return items, nil
		}
		return nil, fmt.Errorf("task %s: %w", taskID, common.ErrorNotFound)
	})
}

// AddTask appends an open task and returns its id.
func (s *BoardSession) AddTask(id, text string) (string, error) {
	taskID := uuid.NewString()
	err := s.editTasks(id, func(items []any) ([]any, error) {
		return append(items, map[string]any{"id": taskID, "text": text, "done": false}), nil
	})
	if err != nil {
		return "", err
	}
	return taskID, nil
}

// RemoveTask drops task taskID.
func (s *BoardSession) RemoveTask(id, taskID string) error {
	return s.editTasks(id, func(items []any) ([]any, error) {
		for i, it := range items {
			if m, ok := it.(map[string]any); ok && m["id"] == taskID {
				return append(items[:i], items[i+1:]...), nil
			}
		}
		return nil, fmt.Errorf("task %s: %w", taskID, common.ErrorNotFound)
	})
}

func (s *BoardSession) editTasks(id string, edit func([]any) ([]any, error)) error {
	p, ok := s.Provider(id)
	if !ok {
		return common.ErrorNotFound
	}
	rec := p.View()
	if rec.Type != widgets.TypeTask {
		return fmt.Errorf("widget %s is %q, not a task list: %w", id, rec.Type, common.ErrorValidation)
	}

	cfg := copyConfig(rec.Config)
	items, _ := cfg["items"].([]any)
	items, err := edit(items)
	if err != nil {
		return err
	}
	cfg["items"] = items
	return p.UpdateConfigDebounced(cfg)
}

// SetFontScale changes the font scale of a text widget, debounced like a
// slider drag.
func (s *BoardSession) SetFontScale(id string, scale float64) error {
	p, ok := s.Provider(id)
	if !ok {
		return common.ErrorNotFound
	}
	rec := p.View()
	if rec.Type != widgets.TypeText {
		return fmt.Errorf("widget %s is %q, not text: %w", id, rec.Type, common.ErrorValidation)
	}
	cfg := copyConfig(rec.Config)
	cfg["fontScale"] = scale
	return p.UpdateConfigDebounced(cfg)
}

// copyConfig deep-copies the task items so edits never touch the record
// held by the provider.
func copyConfig(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = v
	}
	if items, ok := cfg["items"].([]any); ok {
		cp := make([]any, len(items))
		for i, it := range items {
			if m, ok := it.(map[string]any); ok {
				mm := make(map[string]any, len(m))
				for k, v := range m {
					mm[k] = v
				}
				cp[i] = mm
				continue
			}
			cp[i] = it
		}
		out["items"] = cp
	}
	return out
}
