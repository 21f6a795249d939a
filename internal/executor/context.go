package executor

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/config"
	"github.com/xgui3783/ebrains-util/internal/dataproxy"
	"github.com/xgui3783/ebrains-util/internal/pagination"
	"github.com/xgui3783/ebrains-util/internal/token"
	"go.uber.org/zap"
)

// Context holds all execution state passed through steps
type Context struct {
	Cmd  *cobra.Command
	Args []string
	Ctx  context.Context

	// Populated by the With* steps
	Config     *config.Config
	Logger     *zap.Logger
	Token      *token.Token
	Bucket     *dataproxy.Bucket
	Pagination pagination.Options

	Duration time.Duration

	data map[string]any
}

func newContext(cmd *cobra.Command, args []string) *Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Cmd:    cmd,
		Args:   args,
		Ctx:    ctx,
		Logger: zap.NewNop(),
		data:   make(map[string]any),
	}
}

func (c *Context) Stdout() io.Writer { return c.Cmd.OutOrStdout() }
func (c *Context) Stderr() io.Writer { return c.Cmd.ErrOrStderr() }

// RawToken is the bearer token for API calls, or "" when anonymous.
func (c *Context) RawToken() string {
	if c.Token == nil {
		return ""
	}
	return c.Token.Raw
}

type Key[T any] struct {
	name string
}

func NewKey[T any](name string) Key[T] {
	return Key[T]{name: name}
}

// Set stores a typed value in the context
func Set[T any](ctx *Context, key Key[T], value T) {
	ctx.data[key.name] = value
}

// Get returns the value stored under key, or the zero value.
func Get[T any](ctx *Context, key Key[T]) T {
	v, _ := ctx.data[key.name].(T)
	return v
}
