package messages

import (
	"pubgpt-tui/internal/conversation"
	"pubgpt-tui/internal/protocol"
	"pubgpt-tui/internal/tokens"
)

// Stream lifecycle, relayed from the connection reader goroutines.
type StreamEventMsg struct {
	Conn *conversation.Connection
	Ev   protocol.StreamEvent
}

type StreamErrMsg struct {
	Conn *conversation.Connection
	Err  error
}

type StreamClosedMsg struct {
	Conn *conversation.Connection
}

// Background data refreshes.
type TokenStatsMsg struct {
	Stats tokens.Stats
}

type HistoryLoadedMsg struct {
	SessionID string
	Restored  []conversation.RestoredMessage
	Err       error
}

type ExportDoneMsg struct {
	Path string
	Err  error
}
