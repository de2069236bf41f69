package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lucashald/skill-check/internal/data"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintVersionListsBundledCompendiums(t *testing.T) {
	var buf bytes.Buffer
	printVersion(&buf, data.NewLoader(nil).LoadAll())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "skillcheck dev (none, built unknown, "))
	assert.Equal(t, "Bundled compendiums: 1", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "├─ core: "))
}
