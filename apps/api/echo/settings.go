package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/disciplan/core/settings"
)

type settingsApi struct {
	svc      *settings.Service
	validate *validator.Validate
}

func registerSettingsAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps *ServerDeps) {
	api := settingsApi{
		svc:      deps.SettingsSvc,
		validate: deps.Validate,
	}

	sg := g.Group("/settings", jwt)
	sg.GET("", api.retrieve)
	sg.PATCH("", api.update)
}

// Handlers

func (api *settingsApi) retrieve(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.Get(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "getting settings")
	}
	return ctx.JSON(http.StatusOK, SettingsResponse{Settings: s})
}

func (api *settingsApi) update(ctx echo.Context) error {
	userID, err := contextUserID(ctx)
	if err != nil {
		return err
	}

	var data settings.UpdateSettings
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSettings")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	s, err := api.svc.Update(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "updating settings")
	}
	return ctx.JSON(http.StatusOK, SettingsResponse{Settings: s})
}

type SettingsResponse struct {
	Settings settings.Settings `json:"settings"`
}
