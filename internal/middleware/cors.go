package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig allows every origin and method. Authorization is added to the
// allowed headers so browser preflights for authenticated calls succeed.
func CORSConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AddAllowHeaders("Authorization")
	return cfg
}

func CORS() gin.HandlerFunc {
	return cors.New(CORSConfig())
}
