package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/PauloHelder/thronus01-sub002/pkg/jwtutil"
)

// currentClaims retrieves the authenticated user's claims from the context
// (set by the auth middleware)
func currentClaims(c echo.Context) (*jwtutil.UserClaims, bool) {
	claims, ok := c.Get("user").(*jwtutil.UserClaims)
	return claims, ok
}

// currentChurchID retrieves the claims and the church (tenant) context.
// Returns false when either is missing.
func currentChurchID(c echo.Context) (*jwtutil.UserClaims, uint, bool) {
	claims, ok := currentClaims(c)
	if !ok || claims.ChurchID == nil {
		return claims, 0, false
	}
	return claims, *claims.ChurchID, true
}
