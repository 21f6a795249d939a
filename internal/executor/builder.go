// Package executor runs a command as a pipeline of steps, showing a spinner
// on the terminal while each named step is in flight.
package executor

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/config"
	"github.com/xgui3783/ebrains-util/internal/dataproxy"
	"github.com/xgui3783/ebrains-util/internal/flags"
	"github.com/xgui3783/ebrains-util/internal/iam"
	"github.com/xgui3783/ebrains-util/internal/logging"
	"github.com/xgui3783/ebrains-util/internal/pagination"
	"github.com/xgui3783/ebrains-util/internal/token"
	"github.com/xgui3783/ebrains-util/internal/ui"
	"go.uber.org/zap"
)

const ansiEraseLine = "\r\x1b[2K"

// AnonymousWarning is printed when a bucket command runs without a usable token.
const AnonymousWarning = "Not authenticated. Using anonymous client. Only has read access to public buckets"

type TokenMode int

const (
	// TokenOptional falls back to anonymous access when no valid token exists.
	TokenOptional TokenMode = iota
	// TokenRequired fails when the token is missing or expired.
	TokenRequired
)

type step struct {
	message string
	silent  bool
	run     func(ctx *Context, progress chan<- string) error
}

// ContextBuilder constructs an executor pipeline with context
type ContextBuilder struct {
	steps     []step
	displayFn func(ctx *Context)
}

func New() *ContextBuilder {
	return &ContextBuilder{}
}

// WithConfig loads the configuration and builds the logger. Every other
// With* step depends on it.
func (b *ContextBuilder) WithConfig() *ContextBuilder {
	b.steps = append(b.steps, step{
		silent: true,
		run: func(ctx *Context, _ chan<- string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if verbose, _ := ctx.Cmd.Flags().GetBool(flags.VerboseFlag); verbose {
				cfg.Verbose = true
			}
			ctx.Config = cfg
			ctx.Logger = logging.NewWithWriter(ctx.Stderr(), cfg.Verbose)
			return nil
		},
	})
	return b
}

// Resolver builds the token resolver for the loaded configuration.
func (ctx *Context) Resolver() *token.Resolver {
	client := iam.NewClient(ctx.Config.IAMURL, ctx.Logger)
	client.Out = ctx.Stderr()
	return iam.NewResolver(ctx.Config, client, ctx.Logger)
}

// WithToken resolves the current token into ctx.Token.
func (b *ContextBuilder) WithToken(mode TokenMode) *ContextBuilder {
	b.steps = append(b.steps, step{
		message: "Resolving token",
		run: func(ctx *Context, _ chan<- string) error {
			tok, err := ctx.Resolver().Current(ctx.Ctx)
			switch {
			case err == nil:
				ctx.Token = tok
				return nil
			case errors.Is(err, token.ErrNotFound), errors.Is(err, token.ErrExpired):
				if mode == TokenRequired {
					return err
				}
				ctx.Logger.Debug("falling back to anonymous access", zap.Error(err))
				_, _ = fmt.Fprintln(ctx.Stderr(), ui.Warning(AnonymousWarning))
				return nil
			default:
				return err
			}
		},
	})
	return b
}

// WithBucket opens the bucket named by the --bucket-name flag.
func (b *ContextBuilder) WithBucket() *ContextBuilder {
	b.steps = append(b.steps, step{
		silent: true,
		run: func(ctx *Context, _ chan<- string) error {
			name, _ := ctx.Cmd.Flags().GetString(flags.BucketNameFlag)
			if name == "" {
				return fmt.Errorf("--%s is required", flags.BucketNameFlag)
			}
			client := dataproxy.New(ctx.Config.DataProxyURL, ctx.RawToken(), ctx.Logger)
			ctx.Logger.Debug("opening bucket", zap.String("bucket", name), zap.Bool("anonymous", client.Anonymous()))
			ctx.Bucket = client.Bucket(name)
			return nil
		},
	})
	return b
}

func (b *ContextBuilder) WithPagination() *ContextBuilder {
	b.steps = append(b.steps, step{
		silent: true,
		run: func(ctx *Context, _ chan<- string) error {
			ctx.Pagination = pagination.GetOptions(ctx.Cmd)
			return nil
		},
	})
	return b
}

// Step adds a typed step to the pipeline
func (b *ContextBuilder) Step(s StepRunner) *ContextBuilder {
	b.steps = append(b.steps, step{
		message: s.getMessage(),
		silent:  s.isSilent(),
		run:     s.run,
	})
	return b
}

// Display sets the function that prints the result once every step succeeded.
func (b *ContextBuilder) Display(fn func(ctx *Context)) *ContextBuilder {
	b.displayFn = fn
	return b
}

// RunE returns a cobra RunE function
func (b *ContextBuilder) RunE() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return b.execute(cmd, args)
	}
}

func (b *ContextBuilder) execute(cmd *cobra.Command, args []string) error {
	ctx := newContext(cmd, args)
	interactive := isTerminal(ctx.Stderr())
	start := time.Now()

	for _, s := range b.steps {
		var err error
		if s.message != "" && !s.silent && interactive {
			err = runStep(ctx.Stderr(), s.message, func(progress chan<- string) error {
				return s.run(ctx, progress)
			})
		} else {
			err = s.run(ctx, nil)
		}
		if err != nil {
			return err
		}
	}

	ctx.Duration = time.Since(start)
	if b.displayFn != nil {
		b.displayFn(ctx)
	}
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && ui.IsTerminal(f)
}

func runStep(w io.Writer, message string, task func(progress chan<- string) error) error {
	s := ui.StyledSpinner()
	resultChan := make(chan error, 1)
	progressChan := make(chan string)
	currentMessage := message

	go func() {
		err := task(progressChan)
		close(progressChan)
		resultChan <- err
	}()

	ticker := time.NewTicker(s.Spinner.FPS)
	defer ticker.Stop()
	defer fmt.Fprint(w, ansiEraseLine)

	for {
		select {
		case err := <-resultChan:
			return err
		case msg, ok := <-progressChan:
			if ok {
				currentMessage = msg
			} else {
				progressChan = nil
			}
		case <-ticker.C:
			s, _ = s.Update(s.Tick())
			fmt.Fprintf(w, "%s%s %s...", ansiEraseLine, s.View(), currentMessage)
		}
	}
}
