package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewZap(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	lg := NewZap(zap.New(core))

	lg.Printf("[%d, %s] Starting", 42, "web")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "[42, web] Starting", entries[0].Message)
		assert.Equal(t, zap.InfoLevel, entries[0].Level)
	}
}
