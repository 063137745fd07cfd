package groupchat

import (
	"strings"

	"github.com/bububa/careerchat/components"
)

// TerminateKeyword ends a chat when found in a message, case insensitive
const TerminateKeyword = "terminate"

// TerminationFunc reports whether a message ends the chat
type TerminationFunc func(msg *components.Message) bool

// IsTermination reports whether the message text contains the terminate keyword
func IsTermination(msg *components.Message) bool {
	if msg == nil {
		return false
	}
	return strings.Contains(strings.ToLower(msg.StringifiedContent()), TerminateKeyword)
}
