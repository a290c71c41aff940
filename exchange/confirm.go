package exchange

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/logrusorgru/aurora"
)

//
// Call describes an authenticated request awaiting confirmation.
//
type Call struct {
	Venue   string
	Command string
	Params  url.Values
}

func (o Call) String() string {
	return fmt.Sprintf("%s %s(%s)", o.Venue, o.Command, o.Params.Encode())
}

//
// Confirmer approves or declines authenticated requests before they are sent. A decline surfaces to
// the caller as ErrUserCancelled.
//
type Confirmer interface {
	Confirm(ctx context.Context, call Call) (bool, error)
}

//
// ConfirmFunc adapts a plain function to the Confirmer interface.
//
type ConfirmFunc func(ctx context.Context, call Call) (bool, error)

func (o ConfirmFunc) Confirm(ctx context.Context, call Call) (bool, error) {
	return o(ctx, call)
}

//
// ConsoleConfirmer asks a human on a terminal. An empty answer counts as yes; end of input counts as
// no.
//
type ConsoleConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	au  aurora.Aurora
}

func NewConsoleConfirmer(in io.Reader, out io.Writer, colors bool) *ConsoleConfirmer {
	return &ConsoleConfirmer{
		in:  bufio.NewReader(in),
		out: out,
		au:  aurora.NewAurora(colors),
	}
}

func (o *ConsoleConfirmer) Confirm(ctx context.Context, call Call) (bool, error) {
	for {
		if err := ctx.Err(); err != nil {
			return false, err
		}

		_, err := fmt.Fprintf(o.out, "%s %s %s ", o.au.Bold(o.au.Yellow("Send")), o.au.Cyan(call.String()), o.au.Bold("[Y/n]"))
		if err != nil {
			return false, err
		}

		line, err := o.in.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			if err == io.EOF && line == "" {
				return false, nil
			}

			return true, nil

		case "n", "no":
			return false, nil
		}

		if err == io.EOF {
			return false, nil
		}

		fmt.Fprintln(o.out, o.au.Red("Please answer y or n."))
	}
}

//
// Confirm runs call past confirmer and returns ErrUserCancelled on a decline. A nil confirmer
// approves everything.
//
func Confirm(ctx context.Context, confirmer Confirmer, call Call) error {
	if confirmer == nil {
		return nil
	}

	ok, err := confirmer.Confirm(ctx, call)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: %s", ErrUserCancelled, call)
	}

	return nil
}
