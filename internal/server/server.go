package server

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/PhelGc/signals-sync/internal/funnel"
	"github.com/PhelGc/signals-sync/internal/signals"
	"github.com/PhelGc/signals-sync/internal/tally"
)

// Processor aplica una evaluación ya extraída
type Processor interface {
	Process(ctx context.Context, e funnel.Evaluation) (*signals.Result, error)
}

// Server servidor HTTP del webhook de señales
type Server struct {
	processor Processor
	extractor tally.Extractor
	router    *gin.Engine
}

// NewServer crea el servidor y registra las rutas
func NewServer(processor Processor, extractor tally.Extractor) *Server {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	s := &Server{
		processor: processor,
		extractor: extractor,
		router:    router,
	}

	router.POST("/webhook", s.handleWebhook)
	router.GET("/health", s.handleHealth)

	return s
}

// Handler devuelve el router para usarlo con net/http o en tests
func (s *Server) Handler() *gin.Engine {
	return s.router
}

// Run arranca el servidor HTTP
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}
