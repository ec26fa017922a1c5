package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/aguilarm/scrumd/internal/db"
)

// Server provides the HTTP JSON API over the planning services.
type Server struct {
	engine *gin.Engine
	logger *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	srv := &Server{
		engine: router,
		logger: logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts listening on addr.
func (s *Server) Run(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.engine.Run(addr)
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)

		api.POST("/users", s.handleCreateUser)

		projects := api.Group("/projects")
		{
			projects.POST("", s.handleCreateProject)
			projects.GET(":id", s.handleGetProject)
			projects.POST(":id/start", s.handleStartProject)
			projects.POST(":id/finish", s.handleFinishProject)
			projects.POST(":id/cancel", s.handleCancelProject)
			projects.GET(":id/members", s.handleListProjectMembers)
			projects.POST(":id/members", s.handleAddProjectMember)
			projects.GET(":id/holidays", s.handleListHolidays)
			projects.POST(":id/holidays", s.handleCreateHoliday)
			projects.POST(":id/story-types", s.handleCreateStoryType)
			projects.GET(":id/sprints", s.handleListSprints)
			projects.POST(":id/sprints", s.handleCreateSprint)
			projects.GET(":id/backlog", s.handleBacklog)
			projects.POST(":id/stories", s.handleCreateStory)
		}

		api.DELETE("/holidays/:id", s.handleDeleteHoliday)

		sprints := api.Group("/sprints")
		{
			sprints.GET(":id", s.handleGetSprint)
			sprints.POST(":id/start", s.handleStartSprint)
			sprints.POST(":id/finish", s.handleFinishSprint)
			sprints.GET(":id/capacity", s.handleSprintCapacity)
			sprints.GET(":id/members", s.handleListSprintMembers)
			sprints.POST(":id/members", s.handleAddSprintMember)
			sprints.GET(":id/stories", s.handleSprintStories)
			sprints.GET(":id/burndown", s.handleSprintBurndown)
		}

		api.PUT("/sprint-members/:id", s.handleEditSprintMember)

		stories := api.Group("/stories")
		{
			stories.GET(":id", s.handleGetStory)
			stories.PATCH(":id", s.handleEditStory)
			stories.POST(":id/sprint", s.handleAssignStoryToSprint)
			stories.DELETE(":id/sprint", s.handleRemoveStoryFromSprint)
			stories.POST(":id/member", s.handleAssignStoryToMember)
			stories.POST(":id/column", s.handleMoveStoryColumn)
			stories.POST(":id/tasks", s.handleCreateTask)
			stories.GET(":id/tasks", s.handleListTasks)
			stories.GET(":id/history", s.handleStoryHistory)
		}

		api.POST("/history/:id/restore", s.handleRestoreStory)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail translates a domain error into a JSON error response.
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, db.ErrPlannedSprintExists),
		errors.Is(err, db.ErrActiveSprintExists),
		errors.Is(err, db.ErrAlreadySprintMember),
		errors.Is(err, db.ErrSprintClosed),
		errors.Is(err, db.ErrSprintInProgress),
		errors.Is(err, db.ErrSprintNotPlanned),
		errors.Is(err, db.ErrSprintNotStarted),
		errors.Is(err, db.ErrStoryClosed),
		errors.Is(err, db.ErrHolidayExists):
		status = http.StatusConflict
	case errors.Is(err, db.ErrDurationRange),
		errors.Is(err, db.ErrWorkloadRange),
		errors.Is(err, db.ErrNotProjectMember),
		errors.Is(err, db.ErrProductOwnerOnly),
		errors.Is(err, db.ErrSprintNoStories),
		errors.Is(err, db.ErrSprintNoMembers),
		errors.Is(err, db.ErrColumnRange),
		errors.Is(err, db.ErrMemberNotInSprint),
		errors.Is(err, db.ErrHolidayRunTooLong),
		errors.Is(err, db.ErrSnapshotVersion),
		errors.Is(err, db.ErrSnapshotTypeGone):
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// idParam parses the :id path segment.
func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
