package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/agentholdem/internal/game"
)

func TestManagerLifecycle(t *testing.T) {
	t.Parallel()

	m := NewManager(quietLogger())
	defer m.Shutdown()

	cfg := testConfig()
	cfg.ID = "tbl-b"
	b, err := m.Create(cfg)
	require.NoError(t, err)
	cfg.ID = "tbl-a"
	_, err = m.Create(cfg)
	require.NoError(t, err)

	_, err = m.Create(cfg)
	assert.Error(t, err, "duplicate id")

	got, ok := m.Get("tbl-b")
	require.True(t, ok)
	assert.Same(t, b, got)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "tbl-a", list[0].ID)
	assert.Equal(t, "tbl-b", list[1].ID)

	require.NoError(t, m.Close("tbl-b"))
	assert.ErrorIs(t, m.Close("tbl-b"), ErrTableNotFound)
	_, err = b.Sit("A", "", game.Human, nil)
	assert.ErrorIs(t, err, ErrTableClosed)
	assert.Len(t, m.Tables(), 1)
}

func TestManagerGeneratesIDs(t *testing.T) {
	t.Parallel()

	m := NewManager(quietLogger())
	defer m.Shutdown()

	cfg := testConfig()
	cfg.ID = ""
	table, err := m.Create(cfg)
	require.NoError(t, err)
	assert.Regexp(t, `^tbl_[0-9a-z]{26}$`, table.ID())
}

func TestManagerSubmitRoutesToTable(t *testing.T) {
	t.Parallel()

	feed := NewFeed(64, quietLogger())
	m := NewManager(quietLogger(), WithNotifier(feed))
	defer m.Shutdown()

	table, err := m.Create(testConfig())
	require.NoError(t, err)
	seatPlayers(t, table, "A", "B")
	_, err = table.StartHand()
	require.NoError(t, err)
	_, version := table.View("")

	_, err = m.Submit(context.Background(), "missing", "A", game.CallDecision(), version)
	assert.ErrorIs(t, err, ErrTableNotFound)

	out, err := m.Submit(context.Background(), table.ID(), "A", game.CallDecision(), version)
	require.NoError(t, err)
	assert.Equal(t, "A", out.PlayerID)
	assert.Positive(t, len(feed.C()), "manager options reach its tables")
}

func TestManagerShutdownClosesTables(t *testing.T) {
	t.Parallel()

	m := NewManager(quietLogger())
	table, err := m.Create(testConfig())
	require.NoError(t, err)

	m.Shutdown()
	assert.Empty(t, m.Tables())
	assert.Error(t, table.Context().Err())
}
