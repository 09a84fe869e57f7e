/*
Package cli provides helpers shared by the keywords commands.

Output Formatting:

Commands print results as text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Exit Codes:

A command that must exit with a specific status returns an *ExitError. The
match command maps result codes to statuses grep style: 0 matched, 1 not
matched, 2 for any failure.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()
*/
package cli
