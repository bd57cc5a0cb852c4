package middleware

import (
	"net/http"
	"strings"

	"github.com/arafatr/linkup/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by the auth middlewares.
const (
	ContextUserID = "userID"
	ContextClaims = "claims"
)

// JWTAuthMiddleware checks for a valid bearer JWT and stores the caller's
// user id and claims in the request context.
func JWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}

			userID, claims, err := parseToken(parts[1], jwtSecret)
			if err != nil {
				return err
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}

// WSAuthMiddleware authenticates the WebSocket upgrade request via a token
// query parameter, since browsers cannot set headers on WebSocket dials.
func WSAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := c.QueryParam("token")
			if tokenString == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token query parameter")
			}
			tokenString = strings.TrimPrefix(tokenString, "Bearer ")

			userID, claims, err := parseToken(tokenString, jwtSecret)
			if err != nil {
				return err
			}

			c.Set(ContextUserID, userID)
			c.Set(ContextClaims, claims)
			return next(c)
		}
	}
}

func parseToken(tokenString, jwtSecret string) (primitive.ObjectID, *models.JwtCustomClaims, error) {
	claims := &models.JwtCustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		if err == jwt.ErrSignatureInvalid {
			return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token signature")
		}
		return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	if !token.Valid {
		return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid user id in token")
	}
	return userID, claims, nil
}

// UserID extracts the authenticated user's id stored by the middlewares.
func UserID(c echo.Context) primitive.ObjectID {
	id, _ := c.Get(ContextUserID).(primitive.ObjectID)
	return id
}
