package cmd

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSendCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "send <uri> <payload>...",
		Short: "Publish payloads on a scope",
		Long: `Send publishes each payload argument, in order, on the scope of the
URI through every transport the URI enables.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := a.send(cmd.Context(), args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %d message(s)\n", n)
			return nil
		},
	}
}

func (a *app) send(ctx context.Context, uri string, payloads []string) (int, error) {
	inf, err := a.factory.CreateInformer(uri)
	if err != nil {
		return 0, err
	}
	defer inf.Close()

	for i, p := range payloads {
		if err := inf.Publish(ctx, []byte(p)); err != nil {
			return i, errors.Wrapf(err, "payload %d", i)
		}
	}
	return len(payloads), nil
}
