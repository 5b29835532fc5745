package handlers

import (
	"net/http"
	"sync"

	intconfig "travelwizards/internal/config"
	intdb "travelwizards/internal/db"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "travel wizards api running"})
}

// DBCheck pings the store and reports which tables exist.
func (h Handler) DBCheck(c *gin.Context) {
	conn, d := h.DB, h.Dialect
	if conn == nil {
		conn, d = intconfig.DB, intconfig.Dialect
	}
	if conn == nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database not connected", nil)
		return
	}
	ctx := c.Request.Context()
	if err := conn.PingContext(ctx); err != nil {
		respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database ping failed", err.Error())
		return
	}
	tables := gin.H{}
	missing := 0
	for _, t := range intdb.Tables {
		ok := intdb.HasTable(ctx, conn, d, t)
		tables[t] = ok
		if !ok {
			missing++
		}
	}
	status := http.StatusOK
	if missing > 0 {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"message": "database reachable", "dialect": string(d), "tables": tables, "missing": missing})
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
