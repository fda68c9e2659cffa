package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
)

func (a *App) getStatus() string {
	st := a.authService.State()
	if !st.Authenticated {
		return ""
	}
	return fmt.Sprintf("(%s)", st.User.Username)
}

func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to authkeeper CLI (type 'help' for commands)")
	if st := a.authService.State(); st.Authenticated {
		fmt.Fprintf(a.out, "Session restored for %s\n", st.User.Username)
	}

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(os.Stdin))
}
