package session

import (
	"strings"
	"testing"

	"github.com/lucashald/skill-check/internal/engine"
	"github.com/lucashald/skill-check/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutePlayLoop(t *testing.T) {
	s := newTestSession(t, testConfig(t), 19)

	reply, err := s.Execute("/gm A dragon circles above. A rope was added to your inventory.")
	require.NoError(t, err)
	assert.Equal(t, []string{"Inventory: +1 rope"}, reply.Lines)

	reply, err = s.Execute("I ready my spear.")
	require.NoError(t, err)
	assert.Empty(t, reply.Lines)

	reply, err = s.Execute("/check STR I attack the dragon")
	require.NoError(t, err)
	require.NotNil(t, reply.Outcome)
	assert.Equal(t, "DC 15 from Dragon", reply.Lines[0])
	assert.Equal(t, "STR Check: 19 + 0 = 19 vs DC 15\n├─ STRONG SUCCESS", reply.Lines[1])
	assert.Equal(t, "Notes: Breathes fire.", reply.Lines[2])
	assert.True(t, strings.HasPrefix(reply.Injection, "I attack the dragon\n\n[System: "))

	msgs := s.Transcript()
	require.Len(t, msgs, 3)
	assert.Equal(t, engine.Message{Index: 2, IsUser: true, Text: "I attack the dragon"}, msgs[2])
}

func TestExecuteControlCommands(t *testing.T) {
	s := newTestSession(t, testConfig(t))

	reply, err := s.Execute("/yes")
	require.NoError(t, err)
	assert.Equal(t, []string{"No level-up pending."}, reply.Lines)

	_, err = s.Execute("/gm You gained 2 levels!")
	require.NoError(t, err)
	reply, err = s.Execute("/YES")
	require.NoError(t, err)
	assert.Equal(t, []string{"Level up! Gained 2 level(s)."}, reply.Lines)
	assert.Equal(t, 3, s.Character().Level)

	reply, err = s.Execute("/override wolf")
	require.NoError(t, err)
	assert.Equal(t, []string{"Difficulty pinned to Wolf."}, reply.Lines)
	assert.Equal(t, "wolf", s.Engine().Settings().Override)

	reply, err = s.Execute("/override off")
	require.NoError(t, err)
	assert.Equal(t, []string{"Override cleared."}, reply.Lines)
	assert.Empty(t, s.Engine().Settings().Override)

	reply, err = s.Execute("/dc 40")
	require.NoError(t, err)
	assert.Equal(t, []string{"Default difficulty set to 30."}, reply.Lines)
	assert.Equal(t, 30, s.Engine().Settings().DefaultDifficulty)

	reply, err = s.Execute("/disable beasts")
	require.NoError(t, err)
	assert.Equal(t, []string{"Compendium beasts disabled."}, reply.Lines)

	reply, err = s.Execute("/sheet")
	require.NoError(t, err)
	assert.Contains(t, reply.Lines[0], "Level 3 (2 unspent point(s))")

	reply, err = s.Execute("/help")
	require.NoError(t, err)
	assert.Equal(t, []string{parser.Usage}, reply.Lines)
}

func TestExecuteErrors(t *testing.T) {
	s := newTestSession(t, testConfig(t))

	_, err := s.Execute("   ")
	assert.ErrorIs(t, err, parser.ErrEmpty)

	_, err = s.Execute("/check")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "/check <ability>")

	_, err = s.Execute("/check luck I pray")
	assert.ErrorIs(t, err, engine.ErrUnknownAbility)

	_, err = s.Execute("/teleport home")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command /teleport")
}
