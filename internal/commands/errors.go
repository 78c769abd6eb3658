package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/tkt/internal/core/git"
	"github.com/colonyops/tkt/internal/core/styles"
	"github.com/colonyops/tkt/internal/core/ticket"
	"github.com/colonyops/tkt/internal/workflow"
	"github.com/colonyops/tkt/pkg/iojson"
)

// Explanation is a user-facing account of an error: what kind of failure it
// was and what to run next.
type Explanation struct {
	Kind   string
	Remedy string
}

// Explain maps an error returned by a command to its kind and a remedial
// command. Unknown errors have an empty remedy.
func Explain(err error) Explanation {
	var (
		notFound  *ticket.NotFoundError
		dup       *ticket.DuplicateTicketError
		invalid   *ticket.InvalidStateError
		noActive  *ticket.NoActiveTicketError
		ambiguous *ticket.AmbiguousActiveTicketError
		missing   *ticket.MissingFieldError
		parse     *ticket.ParseError
		write     *ticket.WriteError
		blocked   *workflow.BlockedError
		gitErr    *git.GitOperationError
		fields    criterio.FieldErrors
	)

	switch {
	case errors.As(err, &blocked):
		return Explanation{Kind: "guard blocked", Remedy: blockedRemedy(blocked.Result)}
	case errors.Is(err, workflow.ErrConfirmationRequired):
		return Explanation{Kind: "confirmation required", Remedy: "re-run in a terminal, or pass --force"}
	case errors.Is(err, ticket.ErrDeclined):
		return Explanation{Kind: "declined"}
	case errors.As(err, &notFound):
		if len(notFound.Suggestions) > 0 {
			return Explanation{Kind: "not found", Remedy: "did you mean: " + strings.Join(notFound.Suggestions, ", ")}
		}
		return Explanation{Kind: "not found", Remedy: fmt.Sprintf("tkt create %s <type>", notFound.Name)}
	case errors.As(err, &dup):
		if dup.Locations.Count() > 1 {
			return Explanation{Kind: "duplicate ticket", Remedy: "tkt fix " + dup.Name}
		}
		return Explanation{Kind: "duplicate ticket", Remedy: "tkt show " + dup.Name}
	case errors.As(err, &invalid):
		return Explanation{Kind: "invalid state", Remedy: stateRemedy(invalid)}
	case errors.As(err, &noActive):
		return Explanation{Kind: "no active ticket", Remedy: "tkt create <name> <type>, or tkt resume <name>"}
	case errors.As(err, &ambiguous):
		return Explanation{Kind: "ambiguous active ticket", Remedy: "name the ticket explicitly, or pause all but one"}
	case errors.As(err, &missing), errors.As(err, &parse):
		return Explanation{Kind: "malformed document", Remedy: "tkt verify <name>, then tkt fix <name>"}
	case errors.As(err, &write):
		if errors.Is(err, ticket.ErrStatusConflict) {
			return Explanation{Kind: "status conflict", Remedy: "tkt doctor --autofix"}
		}
		return Explanation{Kind: "write failed", Remedy: "check permissions on the tickets directory"}
	case errors.As(err, &gitErr):
		return Explanation{Kind: "git failure", Remedy: "resolve the git error, then check tkt journal for interrupted transitions"}
	case errors.As(err, &fields):
		return Explanation{Kind: "invalid input"}
	default:
		return Explanation{Kind: "error"}
	}
}

func stateRemedy(e *ticket.InvalidStateError) string {
	switch {
	case strings.Contains(e.Reason, "tkt fix"):
		return "tkt fix " + e.Name
	case e.Op == "resume" && e.Status == ticket.StatusPaused:
		return fmt.Sprintf("tkt resume %s --pause-active", e.Name)
	}

	switch e.Status {
	case ticket.StatusPaused:
		return "tkt resume " + e.Name
	case ticket.StatusInProgress:
		if e.Want == ticket.StatusCompleted {
			return "tkt complete " + e.Name
		}
		return "tkt show " + e.Name
	case ticket.StatusCompleted:
		return "tkt show " + e.Name
	default:
		return "tkt verify " + e.Name
	}
}

func blockedRemedy(r workflow.GuardResult) string {
	if r.ImpliedTicket != "" {
		return "tkt resume " + r.ImpliedTicket
	}
	return "tkt create <name> <type>, or tkt resume <name>"
}

// PrintError writes err with its kind and remedy.
func PrintError(w io.Writer, err error) {
	ex := Explain(err)
	_, _ = fmt.Fprintln(w, styles.ErrorStyle.Render(fmt.Sprintf("%s %s: %v", styles.IconCross, ex.Kind, err)))
	if ex.Remedy != "" {
		_, _ = fmt.Fprintln(w, "  "+styles.MutedStyle.Render(styles.IconArrow)+" "+styles.CommandStyle.Render(ex.Remedy))
	}
}

// PrintErrorJSON writes err as a JSON error document carrying its kind and
// remedy.
func PrintErrorJSON(w io.Writer, err error) {
	ex := Explain(err)
	data := map[string]any{"kind": ex.Kind}
	if ex.Remedy != "" {
		data["remedy"] = ex.Remedy
	}
	_ = iojson.WriteErrorTo(w, err.Error(), data)
}

// WantsJSON reports whether args request JSON output through --json or
// --format json.
func WantsJSON(args []string) bool {
	for i, a := range args {
		switch {
		case a == "--json", a == "--json=true", a == "--format=json":
			return true
		case a == "--format" && i+1 < len(args) && args[i+1] == "json":
			return true
		}
	}
	return false
}
