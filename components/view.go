package components

import (
	"fmt"
	"regexp"

	cohere "github.com/cohere-ai/cohere-go/v2"
	anthropic "github.com/liushuangls/go-anthropic/v2"
	openai "github.com/sashabaranov/go-openai"
)

var invalidNameChars = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeName returns a participant name accepted by chat completion apis
func SanitizeName(name string) string {
	name = invalidNameChars.ReplaceAllString(name, "_")
	if len(name) > 64 {
		name = name[:64]
	}
	return name
}

// View is a transcript seen from one participant.
// Messages sent by the viewer are assistant turns, everything else is user turns.
// Tool calls are kept structured only when the viewer requested them and the results
// are in the transcript, otherwise they are rendered as text.
type View struct {
	viewer      string
	history     []Message
	answered    map[string]struct{}
	inlineNames bool
}

// NewView returns a View of history for viewer, an empty viewer sees every message as user turn
func NewView(viewer string, history []Message) *View {
	answered := make(map[string]struct{})
	for _, msg := range history {
		for _, cb := range msg.ToolCallbacks() {
			answered[cb.ID] = struct{}{}
		}
	}
	owned := make(map[string]struct{})
	for _, msg := range history {
		if viewer == "" || msg.Name() != viewer {
			continue
		}
		for _, call := range msg.ToolCalls() {
			if _, ok := answered[call.ID]; ok {
				owned[call.ID] = struct{}{}
			}
		}
	}
	return &View{
		viewer:   viewer,
		history:  history,
		answered: owned,
	}
}

// InlineNames makes the openai rendering carry speakers in the user content instead of the name field,
// some openai compatible apis (groq) reject message names.
func (v *View) InlineNames() *View {
	v.inlineNames = true
	return v
}

func (v *View) isOwn(msg *Message) bool {
	return v.viewer != "" && msg.Name() == v.viewer && msg.Role() != ToolRole
}

func (v *View) isAnswered(id string) bool {
	_, ok := v.answered[id]
	return ok
}

// split separates structured tool calls from the ones rendered as text
func (v *View) split(calls []ToolCall) (structured []ToolCall, text []ToolCall) {
	for _, call := range calls {
		if v.isAnswered(call.ID) {
			structured = append(structured, call)
		} else {
			text = append(text, call)
		}
	}
	return
}

func (v *View) userText(msg *Message) string {
	txt := msg.Text()
	if name := msg.Name(); name != "" {
		return fmt.Sprintf("%s: %s", name, txt)
	}
	return txt
}

// OpenAI converts the view to openai chat messages, systemPrompt is prepended if not empty
func (v *View) OpenAI(systemPrompt string) []openai.ChatCompletionMessage {
	ret := make([]openai.ChatCompletionMessage, 0, len(v.history)+1)
	if systemPrompt != "" {
		ret = append(ret, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for idx := range v.history {
		msg := &v.history[idx]
		if callbacks := msg.ToolCallbacks(); len(callbacks) > 0 {
			var rest []ToolCallback
			for _, cb := range callbacks {
				if !v.isAnswered(cb.ID) {
					rest = append(rest, cb)
					continue
				}
				ret = append(ret, openai.ChatCompletionMessage{
					Role:       openai.ChatMessageRoleTool,
					Content:    cb.Content,
					ToolCallID: cb.ID,
				})
			}
			if len(rest) > 0 {
				tmp := NewMessage(UserRole, nil).SetName(msg.Name()).SetToolCallbacks(rest)
				ret = append(ret, v.openAIUser(tmp))
			}
			continue
		}
		if v.isOwn(msg) {
			structured, text := v.split(msg.ToolCalls())
			tmp := NewMessage(AssistantRole, msg.Content()).SetToolCalls(text)
			item := openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: tmp.Text(),
			}
			for _, call := range structured {
				item.ToolCalls = append(item.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
			ret = append(ret, item)
			continue
		}
		if msg.Role() == SystemRole && msg.Name() == "" {
			ret = append(ret, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: msg.Text(),
			})
			continue
		}
		ret = append(ret, v.openAIUser(msg))
	}
	return ret
}

func (v *View) openAIUser(msg *Message) openai.ChatCompletionMessage {
	if v.inlineNames {
		return openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: v.userText(msg),
		}
	}
	item := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: msg.Text(),
	}
	if name := msg.Name(); name != "" {
		item.Name = SanitizeName(name)
	}
	return item
}

// Anthropic converts the view to anthropic messages. Consecutive turns of the same role are
// merged as anthropic requires alternating roles starting with user.
func (v *View) Anthropic() []anthropic.Message {
	ret := make([]anthropic.Message, 0, len(v.history))
	push := func(role anthropic.ChatRole, contents ...anthropic.MessageContent) {
		if len(contents) == 0 {
			return
		}
		if l := len(ret); l > 0 && ret[l-1].Role == role {
			ret[l-1].Content = append(ret[l-1].Content, contents...)
			return
		}
		ret = append(ret, anthropic.Message{Role: role, Content: contents})
	}
	for idx := range v.history {
		msg := &v.history[idx]
		if callbacks := msg.ToolCallbacks(); len(callbacks) > 0 {
			var (
				contents []anthropic.MessageContent
				rest     []ToolCallback
			)
			for _, cb := range callbacks {
				if !v.isAnswered(cb.ID) {
					rest = append(rest, cb)
					continue
				}
				contents = append(contents, anthropic.NewToolResultMessageContent(cb.ID, cb.Content, cb.IsError))
			}
			if len(rest) > 0 {
				tmp := NewMessage(UserRole, nil).SetName(msg.Name()).SetToolCallbacks(rest)
				contents = append(contents, anthropic.NewTextMessageContent(v.userText(tmp)))
			}
			push(anthropic.RoleUser, contents...)
			continue
		}
		if v.isOwn(msg) {
			structured, text := v.split(msg.ToolCalls())
			var contents []anthropic.MessageContent
			if txt := NewMessage(AssistantRole, msg.Content()).SetToolCalls(text).Text(); txt != "" {
				contents = append(contents, anthropic.NewTextMessageContent(txt))
			}
			for _, call := range structured {
				contents = append(contents, anthropic.NewToolUseMessageContent(call.ID, call.Name, call.RawArguments()))
			}
			push(anthropic.RoleAssistant, contents...)
			continue
		}
		if txt := v.userText(msg); txt != "" {
			push(anthropic.RoleUser, anthropic.NewTextMessageContent(txt))
		}
	}
	if len(ret) > 0 && ret[0].Role != anthropic.RoleUser {
		ret = append([]anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent("Continue the conversation.")},
		}}, ret...)
	}
	return ret
}

// Cohere converts the view to cohere chat history and the latest message
func (v *View) Cohere() (history []*cohere.Message, message string) {
	l := len(v.history)
	if l == 0 {
		return nil, ""
	}
	history = make([]*cohere.Message, 0, l-1)
	for idx := range v.history[:l-1] {
		msg := &v.history[idx]
		switch {
		case v.isOwn(msg):
			history = append(history, &cohere.Message{
				Role:    "CHATBOT",
				Chatbot: &cohere.ChatMessage{Message: msg.Text()},
			})
		case msg.Role() == SystemRole && msg.Name() == "":
			history = append(history, &cohere.Message{
				Role:   "SYSTEM",
				System: &cohere.ChatMessage{Message: msg.Text()},
			})
		default:
			history = append(history, &cohere.Message{
				Role: "USER",
				User: &cohere.ChatMessage{Message: v.userText(msg)},
			})
		}
	}
	last := &v.history[l-1]
	if v.isOwn(last) {
		return history, last.Text()
	}
	return history, v.userText(last)
}
