package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/config"
	"github.com/bububa/careerchat/groupchat"
	"github.com/bububa/careerchat/schema"
)

func testResult() *groupchat.Result {
	return &groupchat.Result{
		ID: "chat-1",
		Messages: []components.Message{
			*components.NewMessage(components.UserRole, schema.NewString("Review cv.txt")).SetName("user_proxy"),
			*components.NewMessage(components.AssistantRole, nil).SetName("cv_analyst").SetToolCalls([]components.ToolCall{{ID: "c1", Name: "read_file", Arguments: `{"path":"cv.txt"}`}}),
			*components.NewMessage(components.ToolRole, nil).SetName("user_proxy").SetToolCallbacks([]components.ToolCallback{{ID: "c1", Name: "read_file", Content: "open cv.txt: no such file", IsError: true}}),
		},
		StopReason: groupchat.StopMaxRound,
		Rounds:     2,
		LLMCalls:   1,
		Usage:      components.LLMUsage{InputTokens: 12, OutputTokens: 3},
	}
}

func TestPrintMessage(t *testing.T) {
	var buf bytes.Buffer
	for _, msg := range testResult().Messages {
		printMessage(&buf, &msg)
	}
	out := buf.String()
	assert.Contains(t, out, "user_proxy (to chat):")
	assert.Contains(t, out, "Review cv.txt")
	assert.Contains(t, out, `read_file({"path":"cv.txt"}) id=c1`)
	assert.Contains(t, out, "[tool error] read_file: open cv.txt: no such file")

	buf.Reset()
	printSummary(&buf, testResult())
	assert.Contains(t, buf.String(), "max_round after 2 rounds")
}

func TestWriteTranscript(t *testing.T) {
	dir := t.TempDir()
	ret := testResult()

	path := filepath.Join(dir, "chat.yaml")
	require.NoError(t, writeTranscript(path, ret))
	bs, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded groupchat.Result
	require.NoError(t, yaml.Unmarshal(bs, &decoded))
	assert.Equal(t, "chat-1", decoded.ID)
	require.Len(t, decoded.Messages, 3)
	assert.Equal(t, "cv_analyst", decoded.Messages[1].Name())
	assert.Equal(t, "c1", decoded.Messages[2].ToolCallbacks()[0].ID)

	path = filepath.Join(dir, "chat.json")
	require.NoError(t, writeTranscript(path, ret))
	bs, err = os.ReadFile(path)
	require.NoError(t, err)
	decoded = groupchat.Result{}
	require.NoError(t, json.Unmarshal(bs, &decoded))
	assert.Equal(t, groupchat.StopMaxRound, decoded.StopReason)
	assert.Equal(t, int64(12), decoded.Usage.InputTokens)

	assert.Error(t, writeTranscript(filepath.Join(dir, "chat.txt"), ret))
}

func TestPromptInput(t *testing.T) {
	var out bytes.Buffer
	input := promptInput(strings.NewReader("I want a data role\n\n"), &out)
	ctx := context.Background()

	txt, err := input(ctx, "reply: ")
	require.NoError(t, err)
	assert.Equal(t, "I want a data role", txt)
	assert.Contains(t, out.String(), "reply: ")

	txt, err = input(ctx, "reply: ")
	require.NoError(t, err)
	assert.Empty(t, txt)

	txt, err = input(ctx, "reply: ")
	require.NoError(t, err)
	assert.Empty(t, txt)
}

func TestRolesCommand(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "groq")
	for _, key := range []string{"LLM_API_KEY", "GROQ_API_KEY", "ROLES_FILE"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	var buf bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"roles", "--log-level", "silent"})
	require.NoError(t, cmd.Execute())
	out := buf.String()
	assert.Contains(t, out, "cv_analyst (task)")
	assert.Contains(t, out, "resolution_checker (checker)")
	assert.Contains(t, out, "TERMINATE")
	assert.Contains(t, out, "## Team")
}

func TestRunRequiresAPIKey(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_PROVIDER", "groq")
	for _, key := range []string{"LLM_API_KEY", "GROQ_API_KEY"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run", "--cv", "cv.txt"})
	assert.ErrorIs(t, cmd.Execute(), config.ErrMissingAPIKey)
}

func TestRunRequiresCV(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LLM_API_KEY", "test")
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"run"})
	assert.ErrorContains(t, cmd.Execute(), "cv")
}
