//go:build !integration

package ai

import (
	"testing"

	"google.golang.org/genai"

	"job-insight-chat/internal/domain/ports/adapter"
)

func TestToGenAIHistory(t *testing.T) {
	got := toGenAIHistory([]adapter.Message{
		{Role: "user", Content: "q1"},
		{Role: "model", Content: "a1"},
		{Role: "Assistant", Content: "a2"},
		{Role: "", Content: "q2"},
	})
	want := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleModel, genai.RoleUser}
	if len(got) != len(want) {
		t.Fatalf("expected %d contents, got %d", len(want), len(got))
	}
	for i, c := range got {
		if c.Role != string(want[i]) {
			t.Errorf("content %d: role %q, want %q", i, c.Role, want[i])
		}
		if len(c.Parts) != 1 || c.Parts[0].Text == "" {
			t.Errorf("content %d: unexpected parts %+v", i, c.Parts)
		}
	}
}
