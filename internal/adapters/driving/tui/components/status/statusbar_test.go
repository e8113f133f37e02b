package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, 80, bar.Width())
}

func TestBar_View(t *testing.T) {
	tests := []struct {
		name    string
		state   State
		message string
		chunks  int
		want    string
	}{
		{name: "ready without index", state: StateReady, want: "Ready"},
		{name: "ready with index", state: StateReady, chunks: 512, want: "512 passages indexed"},
		{name: "thinking", state: StateThinking, chunks: 512, want: "Thinking..."},
		{name: "refused", state: StateRefused, chunks: 512, want: "No reliable source found"},
		{name: "error with message", state: StateError, message: "timeout", want: "Error: timeout"},
		{name: "error without message", state: StateError, want: "Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := NewBar(nil, nil)
			bar.SetWidth(120)
			bar.SetState(tt.state)
			bar.SetMessage(tt.message)
			bar.SetChunks(tt.chunks)

			view := bar.View()

			assert.Contains(t, view, tt.want)
			assert.Contains(t, view, "enter: ask")
		})
	}
}

func TestBar_ClearKeepsChunks(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetChunks(7)
	bar.SetState(StateError)
	bar.SetMessage("boom")

	bar.Clear()

	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 7, bar.Chunks())
}
