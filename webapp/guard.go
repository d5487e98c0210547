package webapp

import "context"

// DecisionKind is the outcome of a route guard evaluation.
type DecisionKind int

const (
	// DecisionPending means the identity is still resolving; the caller
	// must show a neutral loading state and re-evaluate later.
	DecisionPending DecisionKind = iota
	// DecisionRender means the requested page may be shown.
	DecisionRender
	// DecisionRedirect means the caller must redirect to Decision.Location.
	DecisionRedirect
)

// Decision is what a guarded route should do for the current visitor.
type Decision struct {
	Kind     DecisionKind
	Location string
}

func render() Decision             { return Decision{Kind: DecisionRender} }
func redirect(loc string) Decision { return Decision{Kind: DecisionRedirect, Location: loc} }

// Requirements describes the access rules of one route.
type Requirements struct {
	// RequireAuth redirects anonymous visitors to the login page.
	RequireAuth bool
	// RequireAdmin additionally demands an admin role; non-admins are sent
	// back to the regular dashboard.
	RequireAdmin bool
	// RedirectAdminTo, when set, bounces admins away from this route
	// (the student dashboard auto-forwards admins to the admin dashboard).
	RedirectAdminTo string
	// Override suppresses RedirectAdminTo so admins can view the student
	// variant on request.
	Override bool
}

// Guard decides whether guarded routes render or redirect for a given
// identity. Admin checks are live queries so that a role revoked mid-session
// takes effect on the next navigation.
type Guard struct {
	facade *Facade
}

func NewGuard(facade *Facade) *Guard {
	return &Guard{facade: facade}
}

// Decide evaluates req against the identity. Rules apply in order: an
// unresolved identity always yields Pending; a missing user on an
// auth-required route redirects to /login; a failed or negative admin check
// on an admin route redirects to /dashboard; an admin hitting a route with
// RedirectAdminTo set (and no override) is forwarded there. Anything else
// renders.
func (g *Guard) Decide(ctx context.Context, id *Identity, token string, req Requirements) Decision {
	if id.Loading() {
		return Decision{Kind: DecisionPending}
	}

	usr := id.User()
	if (req.RequireAuth || req.RequireAdmin) && usr == nil {
		return redirect("/login")
	}

	if req.RequireAdmin {
		isAdmin, err := g.facade.IsAdmin(ctx, token)
		if err != nil {
			g.facade.logger.Error("guard: admin check failed", err)
			return redirect("/dashboard")
		}
		if !isAdmin {
			return redirect("/dashboard")
		}
	}

	if req.RedirectAdminTo != "" && !req.Override && usr != nil {
		isAdmin, err := g.facade.IsAdmin(ctx, token)
		if err != nil {
			g.facade.logger.Error("guard: admin check failed", err)
			return render()
		}
		if isAdmin {
			return redirect(req.RedirectAdminTo)
		}
	}

	return render()
}
