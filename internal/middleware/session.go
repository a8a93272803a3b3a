package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/miit-portal/internal/models"
	"github.com/noah-isme/miit-portal/pkg/logger"
)

// ContextIdentityKey is the gin context key storing the resolved *models.Identity.
const ContextIdentityKey = "identity"

type principalResolver interface {
	Load(r *http.Request) (models.Principal, error)
	Resolve(ctx context.Context, p models.Principal) (*models.Identity, bool, error)
	Clear(w http.ResponseWriter, r *http.Request) error
}

// Session resolves the session principal once per request and stores the
// identity on the context. A principal whose record is gone is cleared from
// the cookie; store errors leave the request anonymous.
func Session(sessions principalResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		identity := models.AnonymousIdentity()

		principal, err := sessions.Load(c.Request)
		if err != nil {
			log.Debug("session cookie rejected", zap.Error(err))
		}
		if !principal.IsAnonymous() {
			resolved, stale, err := sessions.Resolve(c.Request.Context(), principal)
			switch {
			case err != nil:
				log.Warn("session principal unresolved", zap.String("kind", string(principal.Kind)), zap.Error(err))
			case stale:
				log.Info("clearing stale session principal", zap.String("kind", string(principal.Kind)))
				if err := sessions.Clear(c.Writer, c.Request); err != nil {
					log.Warn("failed to clear stale session", zap.Error(err))
				}
			default:
				identity = resolved
			}
		}

		c.Set(ContextIdentityKey, identity)
		c.Set(logger.PrincipalKindKey, string(identity.Kind))
		c.Next()
	}
}

// IdentityFromContext returns the identity resolved by Session, or the
// anonymous identity when none was stored.
func IdentityFromContext(c *gin.Context) *models.Identity {
	value, exists := c.Get(ContextIdentityKey)
	if !exists {
		return models.AnonymousIdentity()
	}
	identity, ok := value.(*models.Identity)
	if !ok || identity == nil {
		return models.AnonymousIdentity()
	}
	return identity
}
