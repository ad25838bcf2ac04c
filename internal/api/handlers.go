package api

import (
	"net/http"
	"strconv"
	"strings"

	"textattack/app"
	domainAugmentation "textattack/domain/augmentation"
	"textattack/domain/core"
	"textattack/internal/errors"

	"github.com/gin-gonic/gin"
)

// MaxBatchInputs bounds the inputs of one batch request.
const MaxBatchInputs = 10000

// AugmentTextRequest augments a single text.
type AugmentTextRequest struct {
	Text             string   `json:"text"`
	Recipe           string   `json:"recipe"`
	Alpha            *float64 `json:"alpha,omitempty"`
	NumAugmentations *int     `json:"n_aug,omitempty"`
	NumWordsToSwap   *int     `json:"words_to_swap,omitempty"`
	Seed             *int64   `json:"seed,omitempty"`
	// Audit adds the full result, dropped candidates included, to the response.
	Audit bool `json:"audit"`
}

// AugmentTextResponse carries the outputs of one text.
type AugmentTextResponse struct {
	Outputs []string                   `json:"outputs"`
	Recipe  string                     `json:"recipe"`
	Seed    int64                      `json:"seed"`
	Result  *domainAugmentation.Result `json:"result,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleRecipes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"recipes": s.service.Recipes()})
}

func (s *Server) handleAugment(c *gin.Context) {
	var req AugmentTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "code": errors.CodeInvalidInput})
		return
	}

	run, err := s.service.Augment(c.Request.Context(), app.AugmentRequest{
		Recipe:           req.Recipe,
		Inputs:           []string{req.Text},
		Alpha:            req.Alpha,
		NumAugmentations: req.NumAugmentations,
		NumWordsToSwap:   req.NumWordsToSwap,
		Seed:             req.Seed,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	resp := AugmentTextResponse{Outputs: []string{}, Recipe: run.Recipe, Seed: run.Params.Seed}
	if len(run.Results) == 1 {
		resp.Outputs = run.Results[0].Outputs
		if req.Audit {
			resp.Result = &run.Results[0]
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleBatch(c *gin.Context) {
	var req app.AugmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request data", "code": errors.CodeInvalidInput})
		return
	}
	if len(req.Inputs) == 0 {
		s.respondError(c, errors.InvalidInput("inputs must not be empty"))
		return
	}
	if len(req.Inputs) > MaxBatchInputs {
		s.respondError(c, errors.InvalidInput("too many inputs; the limit is "+strconv.Itoa(MaxBatchInputs)))
		return
	}

	run, err := s.service.Augment(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

func (s *Server) handleListRuns(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			s.respondError(c, errors.InvalidInput("limit must be a positive integer"))
			return
		}
		limit = n
	}

	runs, err := s.service.ListRuns(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (s *Server) handleGetRun(c *gin.Context) {
	id, err := core.ParseRunID(c.Param("id"))
	if err != nil {
		s.respondError(c, errors.InvalidInput(err.Error()))
		return
	}

	run, err := s.service.GetRun(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, run)
}

// respondError classifies err and writes {"error", "code"} with the matching status.
func (s *Server) respondError(c *gin.Context, err error) {
	mapped := errors.FromDomain(err)
	code := errors.GetCode(mapped)
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("[API] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": strings.TrimSpace(mapped.Error()), "code": code})
}

func statusFor(code string) int {
	switch code {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeResourceUnavailable, errors.CodeExternalService:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
