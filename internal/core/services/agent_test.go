package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gioia-labs/gioia-archive/internal/core/domain"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driven"
	"github.com/gioia-labs/gioia-archive/internal/core/ports/driving"
)

func collectChat(t *testing.T, ch <-chan driving.ChatEvent) (string, error) {
	t.Helper()
	var text string
	var err error
	for ev := range ch {
		text += ev.Text
		if ev.Err != nil {
			err = ev.Err
		}
	}
	return text, err
}

func TestAgent_PlainAnswer(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		textRound("The answer is 42."),
	}}
	retrieval := &recordingRetrieval{result: "unused"}
	agent := NewAgent(streamer, retrieval)

	text, err := collectChat(t, agent.Run(context.Background(), nil, "what is the answer?"))

	require.NoError(t, err)
	assert.Equal(t, "The answer is 42.", text)
	assert.Empty(t, retrieval.calls, "no tools requested, none should run")
	require.Len(t, streamer.requests, 1)

	req := streamer.requests[0]
	assert.Contains(t, req.System, "GIOIA Archive assistant")
	assert.Len(t, req.Tools, 3)
	require.Len(t, req.Messages, 1)
	assert.Equal(t, "user", req.Messages[0].Role)
}

func TestAgent_HistoryPrecedesMessage(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{textRound("ok")}}
	agent := NewAgent(streamer, &recordingRetrieval{})

	history := []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	_, err := collectChat(t, agent.Run(context.Background(), history, "new question"))
	require.NoError(t, err)

	msgs := streamer.requests[0].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "earlier question", msgs[0].Content[0].Text)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "new question", msgs[2].Content[0].Text)
}

func TestAgent_ToolRoundTrip(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		toolRound("tu_1", driving.ToolSearchDocuments, `{"query":"roadmap"}`),
		textRound("Found it in the roadmap doc."),
	}}
	retrieval := &recordingRetrieval{result: "search results here"}
	agent := NewAgent(streamer, retrieval)

	text, err := collectChat(t, agent.Run(context.Background(), nil, "where is the roadmap?"))

	require.NoError(t, err)
	assert.Equal(t, "Found it in the roadmap doc.", text)

	require.Len(t, retrieval.calls, 1)
	assert.Equal(t, driving.ToolSearchDocuments, retrieval.calls[0].name)
	assert.Equal(t, "roadmap", retrieval.calls[0].input["query"])

	// Second round sees the assistant turn plus the tool result.
	require.Len(t, streamer.requests, 2)
	msgs := streamer.requests[1].Messages
	require.Len(t, msgs, 3)
	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "tool_use", msgs[1].Content[0].Type)
	assert.Equal(t, "user", msgs[2].Role)
	require.Len(t, msgs[2].Content, 1)
	assert.Equal(t, "tool_result", msgs[2].Content[0].Type)
	assert.Equal(t, "tu_1", msgs[2].Content[0].ToolUseID)
	assert.Equal(t, "search results here", msgs[2].Content[0].Content)
}

func TestAgent_MalformedToolInputBecomesEmpty(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		toolRound("tu_1", driving.ToolSearchDocuments, `{"query": unclosed`),
		textRound("done"),
	}}
	retrieval := &recordingRetrieval{result: "r"}
	agent := NewAgent(streamer, retrieval)

	_, err := collectChat(t, agent.Run(context.Background(), nil, "q"))
	require.NoError(t, err)

	require.Len(t, retrieval.calls, 1)
	assert.Empty(t, retrieval.calls[0].input)
}

func TestAgent_RoundBudget(t *testing.T) {
	// The model requests tools every round; the loop must stop at the cap.
	var rounds [][]driven.StreamEvent
	for i := 0; i < 10; i++ {
		rounds = append(rounds, toolRound(fmt.Sprintf("tu_%d", i), driving.ToolSearchDocuments, `{"query":"again"}`))
	}
	streamer := &scriptedStreamer{rounds: rounds}
	retrieval := &recordingRetrieval{result: "r"}
	agent := NewAgent(streamer, retrieval)

	_, err := collectChat(t, agent.Run(context.Background(), nil, "q"))

	require.NoError(t, err)
	assert.Len(t, streamer.requests, DefaultMaxRounds)
	assert.Len(t, retrieval.calls, DefaultMaxRounds)
}

func TestAgent_WithMaxRounds(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		toolRound("tu_1", driving.ToolSearchDocuments, `{"query":"a"}`),
		toolRound("tu_2", driving.ToolSearchDocuments, `{"query":"b"}`),
		toolRound("tu_3", driving.ToolSearchDocuments, `{"query":"c"}`),
	}}
	agent := NewAgent(streamer, &recordingRetrieval{result: "r"}, WithMaxRounds(2))

	_, err := collectChat(t, agent.Run(context.Background(), nil, "q"))

	require.NoError(t, err)
	assert.Len(t, streamer.requests, 2)
}

func TestAgent_StreamErrorIsTerminal(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		{
			{Type: driven.StreamText, Text: "partial "},
			{Type: driven.StreamError, Err: fmt.Errorf("model overloaded")},
		},
	}}
	agent := NewAgent(streamer, &recordingRetrieval{})

	text, err := collectChat(t, agent.Run(context.Background(), nil, "q"))

	assert.Equal(t, "partial ", text)
	assert.ErrorContains(t, err, "model overloaded")
	assert.Len(t, streamer.requests, 1, "no further rounds after a terminal error")
}

func TestAgent_StartErrorSurfaces(t *testing.T) {
	streamer := &scriptedStreamer{err: fmt.Errorf("connection refused")}
	agent := NewAgent(streamer, &recordingRetrieval{})

	_, err := collectChat(t, agent.Run(context.Background(), nil, "q"))

	assert.ErrorContains(t, err, "connection refused")
}

func TestAgent_ContextCancellationStopsStream(t *testing.T) {
	streamer := &scriptedStreamer{rounds: [][]driven.StreamEvent{
		textRound("never consumed"),
	}}
	agent := NewAgent(streamer, &recordingRetrieval{})

	ctx, cancel := context.WithCancel(context.Background())
	ch := agent.Run(ctx, nil, "q")
	cancel()

	// The agent must shut down without the consumer draining the channel.
	for range ch {
		break
	}
}
