package access

import (
	"context"
	"net/http"

	"github.com/swifthaul/access/utils"
)

// ============================================================================
// HTTP MIDDLEWARE
// ============================================================================

type ctxKey int

const principalKey ctxKey = iota

// ContextWithPrincipal attaches the authenticated principal to a context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal attached by the authentication
// layer, if any.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey).(*Principal)
	return p, ok && p != nil
}

// SubjectFunc loads the concrete record a request acts on. Returning a nil
// subject with a nil error leaves the check at type level.
type SubjectFunc func(r *http.Request) (Subject, error)

// HTTPOptions configures the authorization middleware. The principal
// extractor and the rejection handlers are supplied by the application;
// DefaultHTTPOptions fills in plain-text defaults.
type HTTPOptions struct {
	Engine            *Engine
	Principal         func(r *http.Request) *Principal
	OnUnauthenticated func(w http.ResponseWriter, r *http.Request)
	OnDenied          func(w http.ResponseWriter, r *http.Request)
	OnError           func(w http.ResponseWriter, r *http.Request, err error)
}

// DefaultHTTPOptions reads the principal from the request context and
// answers rejections with bare status text. The denied response is a generic
// forbidden: which rule failed is recorded only in the audit trail.
func DefaultHTTPOptions(engine *Engine) *HTTPOptions {
	return &HTTPOptions{
		Engine: engine,
		Principal: func(r *http.Request) *Principal {
			p, _ := PrincipalFromContext(r.Context())
			return p
		},
		OnUnauthenticated: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, ErrUnauthenticated.Error(), http.StatusUnauthorized)
		},
		OnDenied: func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, ErrForbidden.Error(), http.StatusForbidden)
		},
		OnError: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, "internal error", http.StatusInternalServerError)
		},
	}
}

// Require returns a middleware enforcing action on resource. A missing
// principal short-circuits with the unauthenticated handler before the
// evaluator runs and is not audited (there is no actor to attribute). Every
// evaluated request, allowed or denied, produces exactly one audit entry.
func (o *HTTPOptions) Require(resource ResourceType, action Action, subjectFn SubjectFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := o.Principal(r)
			if p == nil {
				o.OnUnauthenticated(w, r)
				return
			}
			var subject Subject
			if subjectFn != nil {
				var err error
				subject, err = subjectFn(r)
				if err != nil {
					o.OnError(w, r, err)
					return
				}
			}
			details := map[string]any{
				"endpoint": r.URL.Path,
				"method":   r.Method,
			}
			if o.Engine.Authorize(r.Context(), p, action, resource, subject, details) {
				next.ServeHTTP(w, r)
				return
			}
			o.OnDenied(w, r)
		})
	}
}

// RequirePortal guards a portal's routes via CanAccessPortal. Portal gating
// is routing level, not resource level, so it is not audited; the rejection
// carries the portal name.
func (o *HTTPOptions) RequirePortal(portal Portal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := o.Principal(r)
			if p == nil {
				o.OnUnauthenticated(w, r)
				return
			}
			if !CanAccessPortal(p, portal) {
				http.Error(w, "portal access denied: "+string(portal), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePortalPaths guards several portal route groups at once: each
// pattern ("/driver/*", "GET /staff/reports/:id") maps to the portal it
// belongs to, and a request matching a pattern must pass that portal's
// guard. Unmatched paths pass through.
func (o *HTTPOptions) RequirePortalPaths(patterns map[string]Portal) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			value := r.Method + " " + r.URL.Path
			for pattern, portal := range patterns {
				if !utils.MatchRoute(value, pattern) {
					continue
				}
				p := o.Principal(r)
				if p == nil {
					o.OnUnauthenticated(w, r)
					return
				}
				if !CanAccessPortal(p, portal) {
					http.Error(w, "portal access denied: "+string(portal), http.StatusForbidden)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FilterAllowed scopes a list result to the subjects the principal may act
// on, re-checking each item with the concrete subject. List endpoints audit
// once through Require with a nil subject; the per-item re-checks are pure
// evaluator calls.
func FilterAllowed[S Subject](p *Principal, action Action, resource ResourceType, subjects []S) []S {
	out := make([]S, 0, len(subjects))
	for _, s := range subjects {
		if CanPerform(p, action, resource, s) {
			out = append(out, s)
		}
	}
	return out
}
