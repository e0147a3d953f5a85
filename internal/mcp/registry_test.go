package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTool struct{ name string }

func (s *stubTool) Name() string                 { return s.name }
func (s *stubTool) Description() string          { return "stub" }
func (s *stubTool) InputSchema() json.RawMessage { return json.RawMessage(`{"type":"object"}`) }
func (s *stubTool) Execute(ctx context.Context, params json.RawMessage) (*ToolsCallResult, error) {
	return JSONResult(map[string]string{"tool": s.name})
}

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "manage_task"})

	tool := r.Get("manage_task")
	require.NotNil(t, tool)
	assert.Equal(t, "manage_task", tool.Name())
	assert.Nil(t, r.Get("missing"))
}

func TestRegistry_RegisterPanicsOnDuplicateName(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "manage_task"})
	assert.Panics(t, func() { r.Register(&stubTool{name: "manage_task"}) })
}

func TestRegistry_ListPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubTool{name: "manage_task"})
	r.Register(&stubTool{name: "manage_subtask"})
	r.Register(&stubTool{name: "get_vision_alignment"})

	defs := r.List()
	require.Len(t, defs, 3)
	assert.Equal(t, []string{"manage_task", "manage_subtask", "get_vision_alignment"},
		[]string{defs[0].Name, defs[1].Name, defs[2].Name})
}
