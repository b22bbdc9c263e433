package echoapi

import (
	"net/http"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core/assignment"
)

type assignmentApi struct {
	svc        *assignment.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerAssignmentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := assignmentApi{
		svc:        deps.AssignmentSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	ag := g.Group("/assignments", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.DELETE("/:id", api.destroy)
	ag.GET("/:id/plan", api.plan)

	g.GET("/timeline", api.timeline, jwt)
	g.GET("/history", api.history, jwt)

	tg := g.Group("/tasks", jwt)
	tg.PATCH("/:id", api.updateTask)
	tg.PATCH("/:id/toggle", api.toggleTask)
	tg.DELETE("/:id", api.destroyTask)
}

// pathID parses the :id path param; any non-numeric id is a plain 404.
func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

func contextUserID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// trapNotFoundErr maps the service's not-found errors to a 404.
func trapNotFoundErr(err error, msg string) error {
	switch errors.Cause(err) {
	case assignment.ErrNotFound, assignment.ErrTaskNotFound:
		return errHttpNotFound
	}
	return errors.Wrap(err, msg)
}

// Handlers

func (api *assignmentApi) query(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	assignments, err := api.svc.Query(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying assignments")
	}
	if assignments == nil {
		assignments = []assignment.Assignment{}
	}
	return ctx.JSON(http.StatusOK, assignments)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data assignment.NewAssignment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	a, tasks, err := api.svc.Create(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, CreateAssignmentResponse{Assignment: a, Plan: tasks})
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	taskCount, err := api.svc.Delete(ctx.Request().Context(), userID, id)
	if err != nil {
		return trapNotFoundErr(err, "deleting assignment")
	}
	return ctx.JSON(http.StatusOK, DeleteAssignmentResponse{AssignmentID: id, DeletedTaskCount: taskCount})
}

func (api *assignmentApi) plan(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.svc.Plan(ctx.Request().Context(), userID, id)
	if err != nil {
		return errors.Wrap(err, "querying plan")
	}
	if tasks == nil {
		tasks = []assignment.StudyTask{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *assignmentApi) timeline(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.svc.Timeline(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying timeline")
	}
	if tasks == nil {
		tasks = []assignment.TimelineTask{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *assignmentApi) history(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	tasks, err := api.svc.History(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "querying history")
	}
	if tasks == nil {
		tasks = []assignment.TimelineTask{}
	}
	return ctx.JSON(http.StatusOK, tasks)
}

func (api *assignmentApi) updateTask(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data assignment.UpdateStudyTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudyTask")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	task, err := api.svc.UpdateTask(ctx.Request().Context(), userID, id, data)
	if err != nil {
		return trapNotFoundErr(err, "updating task")
	}
	return ctx.JSON(http.StatusOK, task)
}

func (api *assignmentApi) toggleTask(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	var data ToggleTaskRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ToggleTaskRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	if err := api.svc.ToggleTask(ctx.Request().Context(), userID, id, *data.Completed); err != nil {
		return trapNotFoundErr(err, "toggling task")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Task updated."})
}

func (api *assignmentApi) destroyTask(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}
	id, err := pathID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.DeleteTask(ctx.Request().Context(), userID, id); err != nil {
		return trapNotFoundErr(err, "deleting task")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type (
	CreateAssignmentResponse struct {
		Assignment assignment.Assignment  `json:"assignment"`
		Plan       []assignment.StudyTask `json:"plan"`
	}

	DeleteAssignmentResponse struct {
		AssignmentID     int `json:"assignment_id"`
		DeletedTaskCount int `json:"deleted_task_count"`
	}

	ToggleTaskRequest struct {
		Completed *bool `json:"completed" validate:"required"`
	}
)
