package response

import (
	"net/http"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/pkg/apperror"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the gin context.
func SetPrincipal(c *gin.Context, p *authz.Principal) {
	c.Set(principalKey, p)
}

// GetPrincipal retrieves the authenticated caller from the context
func GetPrincipal(c *gin.Context) (*authz.Principal, error) {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil, apperror.ErrUnauthorized
	}

	p, ok := v.(*authz.Principal)
	if !ok || p == nil {
		return nil, apperror.ErrUnauthorized
	}

	return p, nil
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)

	if code >= http.StatusInternalServerError {
		log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(code, gin.H{"error": apperror.ErrInternal.Error()})
		return
	}

	c.JSON(code, gin.H{"error": err.Error()})
}
