package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aguilarm/scrumd/internal/db"
)

func (s *Server) handleCreateUser(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Name  string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := db.CreateUser(req.Email, req.Name)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (s *Server) handleCreateProject(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Prefix      string `json:"prefix" binding:"required"`
		ScrumMaster uint   `json:"scrum_master" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project, err := db.CreateProject(db.CreateProjectRequest{
		Name:        req.Name,
		Description: req.Description,
		Prefix:      req.Prefix,
		ScrumMaster: req.ScrumMaster,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

func (s *Server) handleGetProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	project, err := db.GetProjectByID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleStartProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	project, err := db.StartProject(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleFinishProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	project, err := db.FinishProject(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, project)
}

func (s *Server) handleCancelProject(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	result, err := db.CancelProject(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"project":           result.Project,
		"cancelled_sprints": len(result.Sprints),
		"cancelled_stories": len(result.Stories),
	})
}

func (s *Server) handleListProjectMembers(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	members, err := db.GetProjectMembers(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) handleAddProjectMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		UserID uint     `json:"user_id" binding:"required"`
		Roles  []string `json:"roles" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := db.AddProjectMember(id, req.UserID, req.Roles)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) handleListHolidays(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	holidays, err := db.GetHolidays(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, holidays)
}

func (s *Server) handleCreateHoliday(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date" binding:"required"` // YYYY-MM-DD
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}
	holiday, err := db.CreateHoliday(id, date)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, holiday)
}

func (s *Server) handleDeleteHoliday(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if err := db.DeleteHoliday(id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCreateStoryType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Name    string   `json:"name" binding:"required"`
		Columns []string `json:"columns" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	usType, err := db.CreateUserStoryType(id, req.Name, req.Columns)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, usType)
}
