package mw

import (
	"github.com/gin-gonic/gin"

	"mango-sync-backend/internal/identity"
	"mango-sync-backend/internal/model"
	"mango-sync-backend/internal/respond"
)

const farmerKey = "mw.farmer"

// RequireFarmer resolves the X-User-ID header and stores the farmer on the
// context. Requests without a valid farmer are rejected.
func RequireFarmer(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		farmer, err := resolver.Resolve(c.Request.Context(), c.GetHeader(identity.Header))
		if err != nil {
			respond.Error(c, err)
			return
		}
		c.Set(farmerKey, farmer)
		c.Next()
	}
}

// Farmer returns the farmer stored by RequireFarmer, or nil.
func Farmer(c *gin.Context) *model.Farmer {
	v, ok := c.Get(farmerKey)
	if !ok {
		return nil
	}
	farmer, _ := v.(*model.Farmer)
	return farmer
}
