package middlewares

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/tnqbao/gau-media-gateway/config"
)

// CORSMiddleware allows the comma separated ALLOWED_DOMAINS, plus any subdomain of GLOBAL_DOMAIN.
func CORSMiddleware(cfg *config.EnvConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	var origins []string
	for _, d := range strings.Split(cfg.CORS.AllowDomains, ",") {
		if d = strings.TrimSpace(d); d != "" {
			origins = append(origins, d)
		}
	}
	globalDomain := strings.TrimPrefix(strings.TrimSpace(cfg.CORS.GlobalDomain), ".")

	if len(origins) == 0 && globalDomain == "" {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
		return cors.New(corsConfig)
	}

	corsConfig.AllowOriginFunc = func(origin string) bool {
		for _, o := range origins {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		if globalDomain == "" {
			return false
		}
		host := origin
		if _, rest, ok := strings.Cut(origin, "://"); ok {
			host = rest
		}
		host, _, _ = strings.Cut(host, ":")
		return host == globalDomain || strings.HasSuffix(host, "."+globalDomain)
	}
	return cors.New(corsConfig)
}
