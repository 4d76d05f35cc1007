package server

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/feliciofc-debug/amz-ofertas-site/internal/domain"
	apperrors "github.com/feliciofc-debug/amz-ofertas-site/internal/errors"
)

// requireAuth validates the bearer token against Supabase and stashes the
// resolved user in the request context. Runs before the action is even parsed,
// so no allocation logic is reachable without a valid identity.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader {
			return apperrors.AuthError("Usuário inválido")
		}

		user, err := s.verifier.VerifyToken(c.Request().Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) {
				return apperrors.AuthError("Usuário inválido")
			}
			return apperrors.AuthError("Usuário inválido").WithField("cause", err.Error())
		}

		c.Set("userID", user.ID)
		c.Set("user", *user)
		return next(c)
	}
}
