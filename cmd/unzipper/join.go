// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/ndeet/unzipper/internal/issue"
	"github.com/ndeet/unzipper/pkg/fsop"
	"github.com/ndeet/unzipper/pkg/multipart"

	"github.com/spf13/cobra"
)

func newJoinCommand(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "join <archive.001>",
		Short: "Reassemble a split archive",
		Long: `Reassemble a split archive from its numbered parts.

Parts (.001, .002, ...) are concatenated in numeric order into
<name>--YYYY-MM-DD--HH-MM.zip next to the first part unless --output is
given. A missing part aborts the join.`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			firstPart := app.resolve(args[0])

			opts := []multipart.Option{
				multipart.WithClock(app.Now),
				multipart.WithLogger(app.logger),
			}
			if output != "" {
				opts = append(opts, multipart.WithOutput(app.resolve(output)))
			}

			res, err := multipart.Join(app.Fs, firstPart, opts...)
			if err != nil {
				return app.fail(cmd, joinError(err, firstPart))
			}

			if res.Overwritten {
				fmt.Fprintln(cmd.ErrOrStderr(), WarningStyle.Render("Replaced existing "+res.Output))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s Joined %d parts into %s: %s\n",
				SuccessStyle.Render("✓"),
				len(res.Parts),
				PathStyle.Render(filepath.Base(res.Output)),
				humanSize(res.Bytes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "joined archive path (default <name>--YYYY-MM-DD--HH-MM.zip)")

	return cmd
}

// joinError links a missing later part to its own help page; a missing
// first part stays a plain not-found error.
func joinError(err error, firstPart string) error {
	if errors.Is(err, fsop.ErrNotFound) {
		var opErr *fsop.OpError
		if errors.As(err, &opErr) && opErr.Op == "join" && opErr.Path != firstPart {
			return issue.NewErrorContext().
				WithOperation("join parts").
				WithResource(firstPart).
				WithIssue(issue.MissingPartId).
				WithSuggestion("Check that every part was copied to the same directory").
				Wrap(err).
				BuildError()
		}
	}
	return issue.FromOp(err, "join parts", firstPart)
}
