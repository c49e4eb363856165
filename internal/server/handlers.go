package server

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhelGc/signals-sync/internal/ports"
	"github.com/PhelGc/signals-sync/internal/tally"
)

const maxBodySize = 1 << 20 // 1MB

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleWebhook(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status": "error",
			"error":  "no se pudo leer el cuerpo: " + err.Error(),
		})
		return
	}

	sub, err := tally.ParseSubmission(body)
	if err != nil {
		s.respondError(c, err)
		return
	}

	evaluation, err := s.extractor.Extract(sub)
	if err != nil {
		s.respondError(c, err)
		return
	}

	result, err := s.processor.Process(c.Request.Context(), evaluation)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":        "success",
		"entry_id":      result.EntryID,
		"submission_id": result.SubmissionID,
		"tier":          result.Tier,
		"funnel_status": result.Status,
		"qualified":     result.Qualified,
		"escalated":     result.Escalated,
		"vote":          result.Vote,
	})
}

// statusFor traduce los errores del dominio a códigos HTTP
func statusFor(err error) int {
	switch {
	case errors.Is(err, tally.ErrMalformedInput), errors.Is(err, ports.ErrUnresolvedDomain):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func (s *Server) respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Printf("Error procesando webhook: %v", err)
	} else {
		log.Printf("Webhook rechazado (%d): %v", code, err)
	}
	c.JSON(code, gin.H{
		"status": "error",
		"error":  err.Error(),
	})
}
