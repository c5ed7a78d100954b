package security

import (
	"regexp"
	"sort"
	"strings"

	"showcase-platform/internal/auth/domain/model"
	"showcase-platform/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
)

// DefaultRedirectPath is returned for routes without a rule.
const DefaultRedirectPath = "/login"

// RouteRule lists the roles allowed on a route and where to send everyone else.
type RouteRule struct {
	Roles        []model.Role
	RedirectPath string
}

type compiledRoute struct {
	pattern string
	regex   *regexp.Regexp
	rule    RouteRule
}

// RouteTable matches request paths against patterns. "[name]" matches one path
// segment and "[...name]" matches one or more.
type RouteTable struct {
	exact  map[string]RouteRule
	routes []compiledRoute
}

var (
	catchAllSegment = regexp.MustCompile(`^\[\.\.\.\w+\]$`)
	dynamicSegment  = regexp.MustCompile(`^\[\w+\]$`)
)

func patternRegex(pattern string) *regexp.Regexp {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		switch {
		case catchAllSegment.MatchString(seg):
			segments[i] = `.+`
		case dynamicSegment.MatchString(seg):
			segments[i] = `[^/]+`
		default:
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.MustCompile("^" + strings.Join(segments, "/") + "$")
}

// NewRouteTable compiles rules. Patterns are tried in lexical order so matching is
// deterministic.
func NewRouteTable(rules map[string]RouteRule) *RouteTable {
	t := &RouteTable{exact: make(map[string]RouteRule, len(rules))}
	patterns := make([]string, 0, len(rules))
	for p, r := range rules {
		t.exact[p] = r
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	for _, p := range patterns {
		t.routes = append(t.routes, compiledRoute{pattern: p, regex: patternRegex(p), rule: rules[p]})
	}
	return t
}

func (t *RouteTable) match(path string) (RouteRule, bool) {
	if r, ok := t.exact[path]; ok {
		return r, true
	}
	for _, cr := range t.routes {
		if cr.regex.MatchString(path) {
			return cr.rule, true
		}
	}
	return RouteRule{}, false
}

// IsProtectedRoute reports whether path has a rule.
func (t *RouteTable) IsProtectedRoute(path string) bool {
	_, ok := t.match(path)
	return ok
}

// RequiredRoles returns the roles allowed on path, or nil when unprotected.
func (t *RouteTable) RequiredRoles(path string) []model.Role {
	r, _ := t.match(path)
	return r.Roles
}

// RedirectPath returns where to send a user refused on path.
func (t *RouteTable) RedirectPath(path string) string {
	if r, ok := t.match(path); ok && r.RedirectPath != "" {
		return r.RedirectPath
	}
	return DefaultRedirectPath
}

const accessDenied = "/access-denied"

// DefaultRouteTable protects the API by role.
func DefaultRouteTable(prefix string) *RouteTable {
	all := []model.Role{model.RoleStudent, model.RoleInstructor, model.RoleAdmin}
	staff := []model.Role{model.RoleInstructor, model.RoleAdmin}
	admin := []model.Role{model.RoleAdmin}
	rule := func(roles []model.Role) RouteRule {
		return RouteRule{Roles: roles, RedirectPath: accessDenied}
	}

	p := strings.TrimRight(prefix, "/")
	return NewRouteTable(map[string]RouteRule{
		p + "/profiles/[...rest]":           rule(all),
		p + "/submissions":                  rule(all),
		p + "/submissions/[...rest]":        rule(all),
		p + "/showcases":                    rule(all),
		p + "/showcases/[...rest]":          rule(all),
		p + "/templates":                    rule(all),
		p + "/templates/[...rest]":          rule(all),
		p + "/cohorts":                      rule(staff),
		p + "/cohorts/[...rest]":            rule(staff),
		p + "/instructor/[...rest]":         rule(staff),
		p + "/admin/[...rest]":              rule(admin),
		p + "/audit-logs":                   rule(admin),
		p + "/auth/admin/[...rest]":         rule(admin),
		p + "/auth/delegations":             rule(staff),
		p + "/auth/delegations/received":    rule(all),
		p + "/auth/delegations/permissions": rule(all),
		p + "/auth/delegations/[id]":        rule(all),
	})
}

// RouteGuard refuses requests to protected paths whose user role, read from the
// request context, is not allowed: 401 when anonymous, 403 otherwise. It must run
// after the auth middleware has populated the context.
func RouteGuard(table *RouteTable) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		roles := table.RequiredRoles(path)
		if roles == nil {
			return c.Next()
		}

		role, err := utils.GetUserRoleFromContext(c.UserContext())
		if err != nil || role == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":    "Authentication required",
				"redirect": DefaultRedirectPath,
			})
		}
		for _, r := range roles {
			if string(r) == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error":    "Insufficient permissions",
			"redirect": table.RedirectPath(path),
		})
	}
}
