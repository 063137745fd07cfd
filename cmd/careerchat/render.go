package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"gopkg.in/yaml.v3"

	"github.com/bububa/careerchat/components"
	"github.com/bububa/careerchat/groupchat"
)

var (
	nameStyle   = color.New(color.FgGreen, color.OpBold)
	toolStyle   = color.New(color.FgYellow)
	resultStyle = color.New(color.FgCyan)
	errorStyle  = color.New(color.FgRed)
	promptStyle = color.New(color.FgMagenta)
	dimStyle    = color.New(color.FgGray)
)

// printMessage renders a transcript message
func printMessage(w io.Writer, msg *components.Message) {
	fmt.Fprintln(w, nameStyle.Sprintf("%s (to chat):", msg.Name()))
	if content := msg.StringifiedContent(); content != "" {
		fmt.Fprintln(w, content)
	}
	for _, call := range msg.ToolCalls() {
		fmt.Fprintln(w, toolStyle.Sprintf("[tool call] %s(%s) id=%s", call.Name, call.RawArguments(), call.ID))
	}
	for _, cb := range msg.ToolCallbacks() {
		if cb.IsError {
			fmt.Fprintln(w, errorStyle.Sprintf("[tool error] %s: %s", cb.Name, cb.Content))
			continue
		}
		fmt.Fprintln(w, resultStyle.Sprintf("[tool result] %s:", cb.Name))
		fmt.Fprintln(w, cb.Content)
	}
	fmt.Fprintln(w, dimStyle.Sprint(strings.Repeat("-", 80)))
}

// printSummary renders why the chat stopped and the llm usage
func printSummary(w io.Writer, ret *groupchat.Result) {
	fmt.Fprintln(w, dimStyle.Sprintf("chat %s stopped: %s after %d rounds, %d llm calls, %d input / %d output tokens",
		ret.ID, ret.StopReason, ret.Rounds, ret.LLMCalls, ret.Usage.InputTokens, ret.Usage.OutputTokens))
}

// writeTranscript exports the chat result as yaml or json by file extension
func writeTranscript(path string, ret *groupchat.Result) error {
	var (
		bs  []byte
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		bs, err = json.MarshalIndent(ret, "", "  ")
	case ".yaml", ".yml":
		bs, err = yaml.Marshal(ret)
	default:
		return fmt.Errorf("unsupported transcript format: %s", path)
	}
	if err != nil {
		return fmt.Errorf("encode transcript: %w", err)
	}
	return os.WriteFile(path, bs, 0o644)
}
