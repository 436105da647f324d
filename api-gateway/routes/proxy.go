package routes

import (
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"

	"github.com/gin-gonic/gin"

	"dwellport-backend/shared/config"
)

var (
	proxyOnce sync.Once
	proxies   map[string]*httputil.ReverseProxy
)

// buildProxies parses each backend URL once and keeps a reverse proxy
// per service for the life of the gateway.
func buildProxies() {
	cfg := config.GetConfig()
	backends := map[string]string{
		"auth":         cfg.AuthServiceURL,
		"portal":       cfg.PortalServiceURL,
		"notification": cfg.NotificationServiceURL,
	}

	proxies = make(map[string]*httputil.ReverseProxy, len(backends))
	for name, rawURL := range backends {
		target, err := url.Parse(rawURL)
		if err != nil {
			log.Printf("⚠️ Skipping backend %s, invalid URL %q: %v", name, rawURL, err)
			continue
		}

		proxy := httputil.NewSingleHostReverseProxy(target)
		proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
			log.Printf("❌ Proxy error for %s %s: %v", r.Method, r.URL.Path, err)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte(`{"error":"Upstream service unavailable"}`))
		}
		proxies[name] = proxy
	}
}

// ProxyToService forwards the request to the named backend service.
func ProxyToService(serviceName string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		proxyOnce.Do(buildProxies)

		proxy, ok := proxies[serviceName]
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Service not found", "service": serviceName})
			return
		}

		proxy.ServeHTTP(ctx.Writer, ctx.Request)
	}
}
