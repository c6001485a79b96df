package rest

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type controller interface {
	RegisterRoutes(*gin.Engine)
}

func (s *Service) makeRouter(controllers ...controller) *gin.Engine {
	// Set the router as the default one shipped with Gin
	router := gin.Default()
	// Add cors
	router.Use(cors.Default())

	for _, v := range controllers {
		v.RegisterRoutes(router)
	}

	return router
}
