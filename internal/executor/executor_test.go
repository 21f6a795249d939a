package executor

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xgui3783/ebrains-util/internal/flags"
	"github.com/xgui3783/ebrains-util/internal/token"
	"github.com/xgui3783/ebrains-util/internal/token/tokentest"
)

var (
	countKey = NewKey[int]("count")
	nameKey  = NewKey[string]("name")
)

func newTestCommand(b *ContextBuilder) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{Use: "test", RunE: b.RunE()}
	flags.RegisterVerbose(cmd)
	flags.RegisterBucketName(cmd)
	var stderr bytes.Buffer
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	return cmd, &stderr
}

func TestStepsShareContext(t *testing.T) {
	var displayed string
	b := New().
		Step(NewStep(countKey, "Counting").Func(func(*Context, chan<- string) (int, error) {
			return 2, nil
		})).
		Step(NewStep(nameKey, "").Silent().Func(func(ctx *Context, _ chan<- string) (string, error) {
			assert.Empty(t, Get(ctx, nameKey))
			return fmt.Sprintf("n%d", Get(ctx, countKey)), nil
		})).
		Display(func(ctx *Context) {
			displayed = Get(ctx, nameKey)
		})

	cmd, _ := newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, "n2", displayed)
}

func TestStepErrorSkipsDisplay(t *testing.T) {
	boom := errors.New("boom")
	var later, displayed bool
	b := New().
		Step(NewStep(countKey, "Failing").Func(func(*Context, chan<- string) (int, error) {
			return 0, boom
		})).
		Step(NewStep(nameKey, "").Func(func(*Context, chan<- string) (string, error) {
			later = true
			return "", nil
		})).
		Display(func(*Context) { displayed = true })

	cmd, _ := newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data"})
	require.ErrorIs(t, cmd.Execute(), boom)
	assert.False(t, later)
	assert.False(t, displayed)
}

func TestGetMissingReturnsZero(t *testing.T) {
	ctx := &Context{data: map[string]any{}}
	assert.Zero(t, Get(ctx, countKey))
	Set(ctx, countKey, 7)
	assert.Equal(t, 7, Get(ctx, countKey))
}

func setUserPath(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, key := range []string{"AUTH_TOKEN", "CLIENT_ID", "CLIENT_SECRET", "REFRESH_TOKEN"} {
		t.Setenv("EBRAINS_UTIL_"+key, "")
	}
	t.Setenv("EBRAINS_UTIL_USER_PATH", dir)
	return dir
}

func TestWithTokenOptional(t *testing.T) {
	setUserPath(t)
	var got *Context
	b := New().WithConfig().WithToken(TokenOptional).WithBucket().Display(func(ctx *Context) { got = ctx })

	cmd, stderr := newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data"})
	require.NoError(t, cmd.Execute())
	assert.Nil(t, got.Token)
	assert.Empty(t, got.RawToken())
	assert.Equal(t, "data", got.Bucket.Name)
	assert.Contains(t, stderr.String(), AnonymousWarning)
}

func TestWithTokenRequired(t *testing.T) {
	setUserPath(t)
	b := New().WithConfig().WithToken(TokenRequired)

	cmd, _ := newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data"})
	require.ErrorIs(t, cmd.Execute(), token.ErrNotFound)

	t.Setenv("EBRAINS_UTIL_AUTH_TOKEN", tokentest.Expired())
	cmd, _ = newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data"})
	require.ErrorIs(t, cmd.Execute(), token.ErrExpired)
}

func TestWithTokenFromEnv(t *testing.T) {
	setUserPath(t)
	raw := tokentest.Valid("openid")
	t.Setenv("EBRAINS_UTIL_AUTH_TOKEN", raw)

	var got *Context
	b := New().WithConfig().WithToken(TokenRequired).Display(func(ctx *Context) { got = ctx })
	cmd, stderr := newTestCommand(b)
	cmd.SetArgs([]string{"-n", "data", "--verbose"})
	require.NoError(t, cmd.Execute())
	assert.Equal(t, raw, got.RawToken())
	assert.True(t, got.Config.Verbose)
	assert.NotContains(t, stderr.String(), AnonymousWarning)
}
