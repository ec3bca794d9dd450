package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/spigell/team-builder/internal/builder"
	"github.com/spigell/team-builder/internal/cost"
	"github.com/spigell/team-builder/internal/salary"
	"github.com/spigell/team-builder/internal/session"
)

var (
	errNotCalculated = errors.New("cost has not been calculated yet")
	errNoRecords     = errors.New("no salary records, estimate salaries first")
)

type analyzeRequest struct {
	Input string `json:"input" binding:"required"`
}

type additionalInfoRequest struct {
	Info string `json:"info" binding:"required"`
}

type rolesRequest struct {
	Relevant   []string `json:"relevant" binding:"required"`
	Irrelevant []string `json:"irrelevant"`
}

type employeesRequest struct {
	Counts map[string]int `json:"counts" binding:"required,dive,min=0"`
}

type costResponse struct {
	Records   []*cost.Record    `json:"records"`
	Totals    cost.Totals       `json:"totals"`
	Formatted map[string]string `json:"formatted"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) createSession(c *gin.Context) {
	id, _ := s.store.Create()
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (s *Server) getSession(c *gin.Context) {
	s.withState(c, func(st *session.State) error {
		c.JSON(http.StatusOK, st)
		return nil
	})
}

func (s *Server) deleteSession(c *gin.Context) {
	if !s.store.Delete(c.Param("id")) {
		s.fail(c, session.ErrNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) analyze(c *gin.Context) {
	var req analyzeRequest
	if !bind(c, &req) {
		return
	}

	s.withState(c, func(st *session.State) error {
		if err := s.builder.Analyze(c.Request.Context(), st, req.Input); err != nil {
			return err
		}
		c.JSON(http.StatusOK, st)
		return nil
	})
}

func (s *Server) additionalInfo(c *gin.Context) {
	var req additionalInfoRequest
	if !bind(c, &req) {
		return
	}

	s.withState(c, func(st *session.State) error {
		if err := s.builder.SubmitAdditionalInfo(c.Request.Context(), st, req.Info); err != nil {
			return err
		}
		c.JSON(http.StatusOK, st)
		return nil
	})
}

func (s *Server) updateRoles(c *gin.Context) {
	var req rolesRequest
	if !bind(c, &req) {
		return
	}

	s.withState(c, func(st *session.State) error {
		st.SetRoles(req.Relevant, req.Irrelevant)
		c.JSON(http.StatusOK, st)
		return nil
	})
}

func (s *Server) estimateSalaries(c *gin.Context) {
	s.withState(c, func(st *session.State) error {
		if err := s.builder.EstimateSalaries(c.Request.Context(), st, nil); err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"records": st.Records})
		return nil
	})
}

func (s *Server) updateEmployees(c *gin.Context) {
	var req employeesRequest
	if !bind(c, &req) {
		return
	}

	s.withState(c, func(st *session.State) error {
		var unknown []string
		for role := range req.Counts {
			if st.Record(role) == nil {
				unknown = append(unknown, role)
			}
		}
		if len(unknown) > 0 {
			slices.Sort(unknown)
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown job roles: " + strings.Join(unknown, ", ")})
			return nil
		}

		for role, n := range req.Counts {
			st.SetEmployeeCount(role, n)
		}
		c.JSON(http.StatusOK, gin.H{"records": st.Records})
		return nil
	})
}

func (s *Server) calculateCost(c *gin.Context) {
	s.withState(c, func(st *session.State) error {
		if len(st.Records) == 0 {
			return errNoRecords
		}

		totals := s.builder.CalculateCost(st)
		c.JSON(http.StatusOK, costResponse{
			Records: st.Records,
			Totals:  totals,
			Formatted: map[string]string{
				"philippines_total_cost":   cost.FormatUSD(totals.Philippines),
				"united_states_total_cost": cost.FormatUSD(totals.UnitedStates),
				"connext_total_cost":       cost.FormatUSD(totals.Connext),
				"total_savings":            cost.FormatUSD(totals.Savings),
			},
		})
		return nil
	})
}

func (s *Server) report(c *gin.Context) {
	refined := c.Query("refined") == "true"

	s.withState(c, func(st *session.State) error {
		if !st.Calculated() {
			return errNotCalculated
		}

		write, name := cost.WriteFullCSV, cost.DefaultFullReportName
		if refined {
			write, name = cost.WriteRefinedCSV, cost.DefaultRefinedReportName
		}

		var buf bytes.Buffer
		if err := write(&buf, st.Records); err != nil {
			return err
		}

		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
		return nil
	})
}

func (s *Server) withState(c *gin.Context, fn func(*session.State) error) {
	if err := s.store.Do(c.Param("id"), fn); err != nil {
		s.fail(c, err)
	}
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return false
	}
	return true
}

func (s *Server) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var warning *builder.UserWarning
	switch {
	case errors.As(err, &warning):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"warning": warning.Message})
	case errors.Is(err, session.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, builder.ErrNoDescription),
		errors.Is(err, builder.ErrNoRelevantRoles),
		errors.Is(err, errNoRecords),
		errors.Is(err, errNotCalculated):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, salary.ErrAttemptsExhausted):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
