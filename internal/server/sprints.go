package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aguilarm/scrumd/internal/db"
)

func (s *Server) handleListSprints(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sprints, err := db.GetSprints(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sprints)
}

func (s *Server) handleCreateSprint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Duration int `json:"duration" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sprint, err := db.CreateSprint(id, req.Duration)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, sprint)
}

func (s *Server) handleGetSprint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sprint, err := db.GetSprintByID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func (s *Server) handleStartSprint(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sprint, err := db.StartSprint(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sprint)
}

func (s *Server) handleFinishSprint(c *gin.Context) {
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
	result, err := db.FinishSprint(id, req.ActorID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sprint":   result.Sprint,
		"finished": result.Finished,
		"returned": result.Returned,
	})
}

func (s *Server) handleSprintCapacity(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	sprint, err := db.GetSprintByID(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	available, err := db.AvailableCapacity(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"capacity":  sprint.Capacity,
		"available": available,
	})
}

func (s *Server) handleListSprintMembers(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	members, err := db.GetSprintMembers(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) handleAddSprintMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		UserID   uint `json:"user_id" binding:"required"`
		Workload int  `json:"workload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := db.AddSprintMember(id, req.UserID, req.Workload)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, member)
}

func (s *Server) handleEditSprintMember(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req struct {
		Workload int `json:"workload" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member, err := db.EditSprintMember(id, req.Workload)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, member)
}

func (s *Server) handleSprintStories(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	stories, err := db.SprintStories(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stories)
}

func (s *Server) handleSprintBurndown(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	points, err := db.SprintBurndown(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
