package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateCommand(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Command
		wantErr bool
	}{
		{name: "start", input: "start", want: Command{Op: START, Args: []string{}}},
		{name: "stop", input: "stop", want: Command{Op: STOP, Args: []string{}}},
		{name: "mine", input: "mine", want: Command{Op: MINE, Args: []string{}}},
		{name: "validate", input: " validate ", want: Command{Op: VALIDATE, Args: []string{}}},
		{
			name:  "transfer",
			input: "transfer 11 Alice Bob 10.5",
			want:  Command{Op: TRANSFER, Args: []string{"11", "Alice", "Bob", "10.5"}},
		},
		{name: "post keeps every word", input: "post Transaction  1", want: Command{Op: POST, Args: []string{"Transaction", "1"}}},
		{name: "show", input: "show 3", want: Command{Op: SHOW, Args: []string{"3"}}},
		{name: "graph", input: "graph 2", want: Command{Op: GRAPH, Args: []string{"2"}}},
		{name: "empty", input: "   ", wantErr: true},
		{name: "unknown", input: "fly", wantErr: true},
		{name: "start with args", input: "start now", wantErr: true},
		{name: "transfer missing amount", input: "transfer 11 Alice Bob", wantErr: true},
		{name: "transfer bad amount", input: "transfer 11 Alice Bob ten", wantErr: true},
		{name: "transfer zero amount", input: "transfer 11 Alice Bob 0", wantErr: true},
		{name: "post without payload", input: "post", wantErr: true},
		{name: "show negative", input: "show -1", wantErr: true},
		{name: "show not a number", input: "show all", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := CreateCommand(tt.input)
			if tt.wantErr {
				assert.NotNil(t, err)
				return
			}
			assert.Nil(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestPayload(t *testing.T) {
	c, err := CreateCommand("post Genesis Block")
	assert.Nil(t, err)
	assert.Equal(t, "Genesis Block", c.Payload())
}

func TestDefaultCommand(t *testing.T) {
	assert.True(t, NewDefaultCommand().IsDefault())
	assert.False(t, Command{Op: STOP}.IsDefault())
}
