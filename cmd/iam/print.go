package iam

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
	"github.com/xgui3783/ebrains-util/internal/executor"
	"github.com/xgui3783/ebrains-util/internal/token"
)

const (
	ignoreExpiryFlag = "ignore-expiry"
	decodeFlag       = "decode"

	decodeSeparator = "====="
)

var printKey = executor.NewKey[*token.Token]("token")

func newPrintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Print the current token",
		Args:  cobra.NoArgs,
		RunE: executor.New().
			WithConfig().
			Step(executor.NewStep(printKey, "Resolving token").Func(currentToken)).
			Display(func(ctx *executor.Context) {
				tok := executor.Get(ctx, printKey)
				if decode, _ := ctx.Cmd.Flags().GetBool(decodeFlag); decode {
					// Display cannot fail; a token that parsed once decodes again.
					_ = writeDecoded(ctx.Stdout(), tok.Raw)
					return
				}
				_, _ = fmt.Fprintln(ctx.Stdout(), tok.Raw)
			}).
			RunE(),
	}
	cmd.Flags().BoolP(ignoreExpiryFlag, "i", false, "Print the token even if it has expired")
	cmd.Flags().Bool(decodeFlag, false, "Print the decoded header and payload instead of the raw token")
	return cmd
}

func currentToken(ctx *executor.Context, _ chan<- string) (*token.Token, error) {
	tok, err := ctx.Resolver().Current(ctx.Ctx)
	if errors.Is(err, token.ErrExpired) {
		if ignore, _ := ctx.Cmd.Flags().GetBool(ignoreExpiryFlag); ignore && tok != nil {
			return tok, nil
		}
	}
	return tok, err
}

// writeDecoded prints the header and payload JSON indented, keeping the
// token's own key order, then the signature.
func writeDecoded(w io.Writer, raw string) error {
	header, payload, signature, err := token.Segments(raw)
	if err != nil {
		return err
	}
	for _, part := range [][]byte{header, payload} {
		var out bytes.Buffer
		if err := json.Indent(&out, bytes.TrimSpace(part), "", "  "); err != nil {
			return fmt.Errorf("%w: %w", jwt.ErrTokenMalformed, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n%s\n", out.Bytes(), decodeSeparator); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w, signature)
	return err
}
