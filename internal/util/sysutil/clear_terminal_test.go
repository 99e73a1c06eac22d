package sysutil

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClearTerminal(t *testing.T) {
	var buf bytes.Buffer
	ClearTerminal(&buf)
	assert.Equal(t, ansiClear, buf.String())
}
