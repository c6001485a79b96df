// Package rest serves the operator HTTP API of a running node.
package rest

import (
	"fmt"

	"telemesh.io/prototype/internal/log"
	"telemesh.io/prototype/internal/log/fld"
	"telemesh.io/prototype/node"
	nodeapi "telemesh.io/prototype/node/api"

	"github.com/gin-gonic/gin"
)

// Config defines the values passed into the REST Service
type Config struct {
	Node *node.Node
	Port int
}

// Service gives us a place to store values for our REST API
type Service struct {
	port   int
	router *gin.Engine
}

// New returns a new REST API
func New(cfg *Config) *Service {
	s := &Service{
		port: cfg.Port,
	}

	nodeCtrl := nodeapi.New(cfg.Node)

	s.router = s.makeRouter(nodeCtrl)
	go func() {
		log.Info("http server started", fld.Port(cfg.Port))
		log.Fatal("http server exited", fld.Err(s.router.Run(":"+fmt.Sprintf("%d", cfg.Port))))
	}()
	return s
}
