package httpx

import (
	"net/http"
	"regexp"

	domainauth "github.com/inkhouse/storyapi/internal/domain/auth"
)

// HandlerFunc is a route handler invoked with the dispatch match: the
// resolved identity plus the pattern's capture groups.
type HandlerFunc func(w http.ResponseWriter, r *http.Request, m Match)

// Match carries per-dispatch data into a handler.
type Match struct {
	Identity domainauth.Identity
	// Params are the pattern's submatches; Params[0] is the full path.
	Params []string
}

// Param returns the i-th capture group, or "" when the pattern has fewer.
func (m Match) Param(i int) string {
	if i < 0 || i >= len(m.Params) {
		return ""
	}
	return m.Params[i]
}

// Rule is one route: a method, an anchored path regexp, and a handler.
// Rules are static configuration, immutable at runtime, and evaluated in
// declaration order.
type Rule struct {
	Method  string
	Pattern *regexp.Regexp
	Handler HandlerFunc
}

// NewRule compiles a rule, anchoring the pattern to the whole path. The
// pattern string is trusted configuration; a bad one is a programmer error.
func NewRule(method, pattern string, h HandlerFunc) Rule {
	return Rule{
		Method:  method,
		Pattern: regexp.MustCompile("^" + pattern + "$"),
		Handler: h,
	}
}

// Decision is the outcome of the auth gate for one request: either the
// request proceeds with an identity, or the gate already has a response.
type Decision interface {
	isDecision()
}

// Proceed lets the request continue to the authenticated rules.
type Proceed struct {
	Identity domainauth.Identity
}

// ShortCircuit ends the request with the gate's own response
// (redirect-to-login, forbidden, or an upgrade redirect with Set-Cookie).
type ShortCircuit struct {
	Respond http.HandlerFunc
}

func (Proceed) isDecision()      {}
func (ShortCircuit) isDecision() {}

// Gate decides, per request, whether a caller may proceed and as whom.
type Gate interface {
	Evaluate(r *http.Request) Decision
}

// Router dispatches requests across two ordered rule lists. Pre-auth rules
// run with the anonymous identity; if none match, the gate runs, and only a
// Proceed decision reaches the authenticated rules. First match wins in both
// lists; no match in either is a 404.
type Router struct {
	preAuth []Rule
	authed  []Rule
	gate    Gate
}

// NewRouter constructs a Router from its rule lists and gate.
func NewRouter(preAuth, authed []Rule, gate Gate) *Router {
	return &Router{preAuth: preAuth, authed: authed, gate: gate}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rule, params, ok := match(rt.preAuth, r); ok {
		rule.Handler(w, r, Match{Identity: domainauth.Anonymous(), Params: params})
		return
	}

	switch d := rt.gate.Evaluate(r).(type) {
	case ShortCircuit:
		d.Respond(w, r)
	case Proceed:
		if rule, params, ok := match(rt.authed, r); ok {
			r = r.WithContext(SetIdentityInContext(r.Context(), d.Identity))
			rule.Handler(w, r, Match{Identity: d.Identity, Params: params})
			return
		}
		http.NotFound(w, r)
	default:
		// a Gate must return one of the two decision kinds
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func match(rules []Rule, r *http.Request) (Rule, []string, bool) {
	for _, rule := range rules {
		if rule.Method != r.Method {
			continue
		}
		if params := rule.Pattern.FindStringSubmatch(r.URL.Path); params != nil {
			return rule, params, true
		}
	}
	return Rule{}, nil, false
}
