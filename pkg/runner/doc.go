/*
Package runner plays a quest locally, outside of any chat transport.

A Runner drives a ports.QuestEngine with one user id and delegates I/O to an
IOHandler: TextHandler for an interactive terminal and JSONHandler for
JSON-lines pipes (scripted walkthroughs, other programs).

# Usage

	r := runner.NewRunner(
		runner.WithUserID("local"),
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout)),
	)
	if err := r.Run(ctx, eng); err != nil {
		log.Fatal(err)
	}

Input is passed through SanitizeInput before it reaches the engine.
*/
package runner
