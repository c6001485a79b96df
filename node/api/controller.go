package api

import (
	"net/http"
	"strconv"

	"telemesh.io/prototype/node"

	"github.com/gin-gonic/gin"
)

// Controller is the node operator controller
type controller struct {
	service Service
}

// Controller is the node operator controller
type Controller interface {
	RegisterRoutes(router *gin.Engine)
}

// NewWithService returns a new api.Controller
func NewWithService(service Service) Controller {
	return &controller{service}
}

// New returns a new api.Controller
func New(n *node.Node) Controller {
	return &controller{NewService(n)}
}

func (controller *controller) RegisterRoutes(router *gin.Engine) {
	router.GET("/api/status", controller.Status)
	router.GET("/api/chain", controller.Chain)
	router.GET("/api/pool", controller.Pool)
	router.GET("/api/peers", controller.Peers)
	router.GET("/api/telemetry", controller.Telemetry)
	router.POST("/api/role", controller.SetRole)
	router.POST("/api/save", controller.Save)
	router.POST("/api/clear", controller.Clear)
}

// Status reports the node identity, role and chain counters
func (controller *controller) Status(c *gin.Context) {
	status, httpStatus, err := controller.service.Status()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

// Chain lists the headers of all blocks still retained in the ring
func (controller *controller) Chain(c *gin.Context) {
	chain, httpStatus, err := controller.service.Chain()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, chain)
}

// Pool lists the pending transactions awaiting inclusion in a block
func (controller *controller) Pool(c *gin.Context) {
	pool, httpStatus, err := controller.service.Pool()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, pool)
}

// Peers lists the addresses of the known peers
func (controller *controller) Peers(c *gin.Context) {
	peers, httpStatus, err := controller.service.Peers()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, peers)
}

// Telemetry queries pooled readings by sensor ID and time window
func (controller *controller) Telemetry(c *gin.Context) {
	from, err := timestampQuery(c, "from", 0)
	if err != nil {
		c.JSON(http.StatusBadRequest, Error{err.Error()})
		return
	}
	to, err := timestampQuery(c, "to", ^uint32(0))
	if err != nil {
		c.JSON(http.StatusBadRequest, Error{err.Error()})
		return
	}
	readings, httpStatus, err := controller.service.Telemetry(c.Query("sensor"), from, to)
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, readings)
}

// SetRole overrides the consensus role of the node
func (controller *controller) SetRole(c *gin.Context) {
	req := RoleRequest{}
	if err := c.BindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Error{err.Error()})
		return
	}
	role, httpStatus, err := controller.service.SetRole(req.Role)
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, role)
}

// Save forces an immediate snapshot of the chain, metadata and pool
func (controller *controller) Save(c *gin.Context) {
	httpStatus, err := controller.service.Save()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, OKResponse{Status: "saved"})
}

// Clear wipes the persisted chain, metadata and pool snapshots
func (controller *controller) Clear(c *gin.Context) {
	httpStatus, err := controller.service.Clear()
	if err != nil {
		c.JSON(httpStatus, Error{err.Error()})
		return
	}
	c.JSON(http.StatusOK, OKResponse{Status: "cleared"})
}

func timestampQuery(c *gin.Context, key string, fallback uint32) (uint32, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}
