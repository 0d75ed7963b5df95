package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosight/gosight/summarizer/internal/preprocessor"
	"github.com/gosight/gosight/summarizer/internal/rrweb"
)

const recordingJSON = `[
	{"type":4,"timestamp":1700000000000,"data":{"href":"https://shop.example.com/","width":1280,"height":720}},
	{"type":2,"timestamp":1700000000010,"data":{"node":{"type":0,"id":1,"childNodes":[]},"initialOffset":{"left":0,"top":0}}},
	{"type":3,"timestamp":1700000000500,"data":{"source":3,"id":1,"x":0,"y":200}},
	{"type":3,"timestamp":1700000000510,"data":{"source":3,"id":1,"x":0,"y":205}}
]`

func writeRecording(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recording.json")
	require.NoError(t, os.WriteFile(path, []byte(recordingJSON), 0o644))
	return path
}

// sessionSummary is the part of the processed session the tests inspect.
type sessionSummary struct {
	Metadata preprocessor.Metadata     `json:"metadata"`
	Events   preprocessor.EventSummary `json:"events"`
}

func decodeSummary(t *testing.T, out string) sessionSummary {
	t.Helper()
	var s sessionSummary
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	return s
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	t.Cleanup(func() {
		downsample, sessionID, indent = false, "", false
	})

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestProcessCommand(t *testing.T) {
	out := execute(t, "process", "--session-id", "sess-9", writeRecording(t))

	s := decodeSummary(t, out)
	assert.Equal(t, "sess-9", s.Metadata.SessionID)
	assert.Equal(t, "https://shop.example.com/", s.Metadata.URL)
	assert.Equal(t, 4, s.Events.Total)
}

func TestProcessCommandDownsampled(t *testing.T) {
	out := execute(t, "process", "--downsample", writeRecording(t))

	s := decodeSummary(t, out)
	assert.Equal(t, 3, s.Events.Total)
}

func TestDownsampleCommand(t *testing.T) {
	out := execute(t, "downsample", writeRecording(t))

	events, err := rrweb.DecodeEvents([]byte(out))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, int64(1700000000500), events[2].Timestamp)
}

func TestDownsampleCommandLeavesFlagUnset(t *testing.T) {
	execute(t, "downsample", writeRecording(t))
	assert.False(t, downsample)

	out := execute(t, "process", writeRecording(t))
	assert.Equal(t, 4, decodeSummary(t, out).Events.Total)
}

func TestProcessCommandMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{"process", filepath.Join(t.TempDir(), "nope.json")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}
