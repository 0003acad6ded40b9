package runner

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfirmationMiddleware(t *testing.T) {
	out := &bytes.Buffer{}
	h := NewTextHandler(strings.NewReader("YES\nnope\n"), out)
	confirm := ConfirmationMiddleware(h, CommandDelete, CommandBack)
	ctx := context.Background()

	ok, _, err := confirm(ctx, Command{Kind: CommandNavigate, Route: "a"})
	require.NoError(t, err)
	assert.True(t, ok, "unlisted kinds pass without asking")
	assert.Empty(t, out.String())

	ok, _, err = confirm(ctx, Command{Kind: CommandDelete})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, out.String(), `Run "delete"? [y/N]`)

	ok, reason, err := confirm(ctx, Command{Kind: CommandBack})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "back cancelled", reason)
}

func TestMultiInterceptor(t *testing.T) {
	calls := 0
	counting := func(context.Context, Command) (bool, string, error) {
		calls++
		return true, "", nil
	}
	chain := MultiInterceptor(counting, ReadOnlyMiddleware(), counting)
	ctx := context.Background()

	ok, _, err := chain(ctx, Command{Kind: CommandState})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, calls)

	ok, reason, err := chain(ctx, Command{Kind: CommandNavigate})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, reason, "read-only")
	assert.Equal(t, 3, calls, "the chain stops at the first refusal")

	boom := errors.New("boom")
	chain = MultiInterceptor(func(context.Context, Command) (bool, string, error) { return false, "", boom }, AutoApproveMiddleware())
	_, _, err = chain(ctx, Command{})
	assert.ErrorIs(t, err, boom)
}
