// Package router wires HTTP handlers into the gin engine.
package router

import (
	"github.com/gin-gonic/gin"

	barhandler "intradaybar/internal/feature/intradaybar/transport/handler"
	platformhandler "intradaybar/internal/platform/http/handler"
	jwtmw "intradaybar/internal/platform/jwt"
)

func NewRouter(health *platformhandler.HealthHandler, bars *barhandler.BarHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// 認証不要
	// 導通確認用
	r.GET("/healthz", health.Health)
	r.HEAD("/healthz", health.Health)
	r.OPTIONS("/healthz", health.Health)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	auth := r.Group("/")
	auth.Use(jwtmw.AuthRequired())
	{
		auth.GET("/bars/:security", bars.GetBars)
		auth.GET("/bars/:security/history", bars.GetHistory)
	}

	return r
}
