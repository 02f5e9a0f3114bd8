package cli

import "context"

// cmdCtx returns a background context for CLI operations.
func cmdCtx() context.Context {
	return context.Background()
}
