package utils

import (
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

// UserIDFromTokenMiddleware extracts user ID from JWT token and stores it in context
func UserIDFromTokenMiddleware(ctx iris.Context) {
	claims, ok := jwt.Get(ctx).(*AccessToken)
	if !ok || claims.ID == "" {
		CreateError(iris.StatusUnauthorized, "Unauthorized", "Missing token", ctx)
		return
	}

	ctx.Values().Set("userID", claims.ID)
	ctx.Next()
}

// GetUserID returns the id stored by UserIDFromTokenMiddleware.
func GetUserID(ctx iris.Context) string {
	return ctx.Values().GetString("userID")
}
