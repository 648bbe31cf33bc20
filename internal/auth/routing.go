package auth

import (
	"path"
	"strings"

	"github.com/venkatchiranjeevireddy/auricare-V2/pkg/types"
)

// Client routes the portal hands out
const (
	SignInPath = "/auth"
	HomePath   = "/"
)

var publicPaths = map[string]bool{
	"/":          true,
	"/auth":      true,
	"/about":     true,
	"/team":      true,
	"/features":  true,
	"/news":      true,
	"/community": true,
	"/resources": true,
	"/contact":   true,
	"/privacy":   true,
}

// legacy single-dashboard pages that now live under each role's branch
var legacyPaths = map[string]string{
	"/dashboard":    "dashboard",
	"/appointments": "appointments",
	"/chatbot":      "chatbot",
}

var branches = map[string]types.Role{
	"/user":    types.RoleUser,
	"/patient": types.RolePatient,
	"/doctor":  types.RoleDoctor,
}

var navigation = map[types.Role][]types.NavItem{
	types.RoleUser: {
		{To: "/user/dashboard", Label: "Dashboard"},
		{To: "/user/appointments", Label: "Appointments"},
		{To: "/user/chatbot", Label: "Chatbot"},
		{To: "/about", Label: "About"},
		{To: "/news", Label: "News"},
	},
	types.RolePatient: {
		{To: "/patient/dashboard", Label: "Dashboard"},
		{To: "/patient/appointments", Label: "Appointments"},
		{To: "/patient/progress", Label: "Progress"},
		{To: "/patient/chatbot", Label: "Chatbot"},
		{To: "/about", Label: "About"},
		{To: "/news", Label: "News"},
	},
	types.RoleDoctor: {
		{To: "/doctor/dashboard", Label: "Dashboard"},
		{To: "/doctor/appointments", Label: "Appointments"},
		{To: "/doctor/patients", Label: "Patients"},
		{To: "/doctor/schedule", Label: "Schedule"},
		{To: "/doctor/chatbot", Label: "AI Assistant"},
		{To: "/doctor/learning", Label: "Learning"},
	},
}

// DashboardPath returns the route a role lands on after sign-in
func DashboardPath(role types.Role) string {
	switch role {
	case types.RoleDoctor:
		return "/doctor/dashboard"
	case types.RolePatient:
		return "/patient/dashboard"
	default:
		return "/user/dashboard"
	}
}

// Navigation returns the header links shown to role
func Navigation(role types.Role) []types.NavItem {
	items, ok := navigation[role]
	if !ok {
		items = navigation[types.RoleUser]
	}
	out := make([]types.NavItem, len(items))
	copy(out, items)
	return out
}

// ResolveRoute decides whether the holder of session (nil when signed out)
// may open the client route p, and where to send them otherwise
func ResolveRoute(session *types.Session, p string) types.RouteDecision {
	clean := cleanPath(p)
	decision := types.RouteDecision{Path: clean}

	if publicPaths[clean] {
		decision.Allowed = true
		return decision
	}

	if page, ok := legacyPaths[clean]; ok {
		if session == nil {
			return redirect(decision, SignInPath, "sign in required")
		}
		return redirect(decision, rolePrefix(session.Principal.Role)+"/"+page, "moved to role dashboard")
	}

	owner, guarded := branchOwner(clean)
	if !guarded {
		// Unknown routes render the client's not-found page.
		decision.Allowed = true
		return decision
	}

	if session == nil {
		return redirect(decision, SignInPath, "sign in required")
	}

	if session.Principal.Role != owner {
		return redirect(decision, DashboardPath(session.Principal.Role), "route belongs to another role")
	}

	decision.Allowed = true
	return decision
}

func redirect(d types.RouteDecision, to, reason string) types.RouteDecision {
	d.Allowed = false
	d.Redirect = to
	d.Reason = reason
	return d
}

func branchOwner(p string) (types.Role, bool) {
	for prefix, role := range branches {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return role, true
		}
	}
	return "", false
}

func rolePrefix(role types.Role) string {
	switch role {
	case types.RoleDoctor:
		return "/doctor"
	case types.RolePatient:
		return "/patient"
	default:
		return "/user"
	}
}

func cleanPath(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return HomePath
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
