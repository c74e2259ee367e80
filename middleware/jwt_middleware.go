package middleware

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"policy-portal-backend/config"
	authutils "policy-portal-backend/lib/utils/auth-utils"
	apimodels "policy-portal-backend/models/api"
)

// AuthorizationRequired verifies the bearer token issued by the identity provider.
func AuthorizationRequired() fiber.Handler {
	return AuthorizationRequiredWithSecret(config.Conf.Auth.JWTSecret)
}

func AuthorizationRequiredWithSecret(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		Claims: jwt.MapClaims{},
		// browsers cannot set headers on a websocket handshake
		TokenLookup: "header:Authorization,query:token",
		SigningKey: jwtware.SigningKey{
			JWTAlg: jwtware.HS256,
			Key:    []byte(secret),
		},
		SuccessHandler: func(ctx *fiber.Ctx) error {
			userID := GetUserID(ctx)
			if userID == "" {
				return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError("token has no subject"))
			}
			ctx.Locals("userID", userID)
			return ctx.Next()
		},
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			return ctx.Status(fiber.StatusUnauthorized).JSON(apimodels.NewError(err.Error()))
		},
	})
}

func GetUserID(ctx *fiber.Ctx) string {
	sub, _ := authutils.GetClaims(ctx)["sub"].(string)
	return sub
}

func GetUserName(ctx *fiber.Ctx) string {
	name, _ := authutils.GetClaims(ctx)["name"].(string)
	return name
}
