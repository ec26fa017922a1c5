package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aguilarm/scrumd/internal/db"
)

func (s *Server) handleCreateStory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		UsTypeID          uint   `json:"us_type_id"`
		Title             string `json:"title" binding:"required"`
		Description       string `json:"description"`
		BusinessValue     int    `json:"business_value"`
		TechnicalPriority int    `json:"technical_priority"`
		EstimationTime    int    `json:"estimation_time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.CreateUserStory(db.CreateStoryRequest{
		ProjectID:         id,
		UsTypeID:          req.UsTypeID,
		Title:             req.Title,
		Description:       req.Description,
		BusinessValue:     req.BusinessValue,
		TechnicalPriority: req.TechnicalPriority,
		EstimationTime:    req.EstimationTime,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}

func (s *Server) handleBacklog(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	stories, err := db.Backlog(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

func (s *Server) handleGetStory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	story, err := db.GetUserStoryByID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleEditStory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ActorID           uint    `json:"actor_id" binding:"required"`
		Title             *string `json:"title"`
		Description       *string `json:"description"`
		BusinessValue     *int    `json:"business_value"`
		TechnicalPriority *int    `json:"technical_priority"`
		EstimationTime    *int    `json:"estimation_time"`
		Column            *int    `json:"column"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.EditUserStory(id, db.StoryPatch{
		Title:             req.Title,
		Description:       req.Description,
		BusinessValue:     req.BusinessValue,
		TechnicalPriority: req.TechnicalPriority,
		EstimationTime:    req.EstimationTime,
		Column:            req.Column,
	}, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleAssignStoryToSprint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		SprintID uint `json:"sprint_id" binding:"required"`
		ActorID  uint `json:"actor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.AssignStoryToSprint(req.SprintID, id, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleRemoveStoryFromSprint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ActorID uint `json:"actor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.RemoveStoryFromSprint(id, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleAssignStoryToMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		SprintMemberID *uint `json:"sprint_member_id"` // null unassigns
		ActorID        uint  `json:"actor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.AssignStoryToMember(req.SprintMemberID, id, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleMoveStoryColumn(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Column  *int `json:"column" binding:"required"`
		ActorID uint `json:"actor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.MoveStoryColumn(id, *req.Column, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Description string `json:"description" binding:"required"`
		HoursWorked int    `json:"hours_worked" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	task, err := db.CreateTask(id, req.Description, req.HoursWorked)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (s *Server) handleListTasks(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	tasks, err := db.StoryTasks(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func (s *Server) handleStoryHistory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	entries, err := db.StoryHistory(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleRestoreStory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		ActorID uint `json:"actor_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	story, err := db.RestoreStory(id, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, story)
}
