package echoapi

import (
	"net/http"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/community"
)

type communityApi struct {
	svc       *community.Service
	assistant *assistant.Service // optional
	files     core.FileStore
}

func registerCommunityAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *community.Service, assistantSvc *assistant.Service, files core.FileStore) {
	api := communityApi{svc: svc, assistant: assistantSvc, files: files}

	bg := g.Group("/builds")
	bg.GET("", api.list)
	bg.GET("/:id", api.retrieve)

	ag := bg.Group("", jwt)
	ag.POST("", api.create)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
	ag.POST("/:id/analyze", api.analyze)
}

// Handlers

func (api *communityApi) list(ctx echo.Context) error {
	builds, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying builds")
	}
	return ctx.JSON(http.StatusOK, builds)
}

func (api *communityApi) retrieve(ctx echo.Context) error {
	b, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting build")
	}
	return ctx.JSON(http.StatusOK, b)
}

// create accepts a multipart form: the build fields plus an optional photo.
func (api *communityApi) create(ctx echo.Context) error {
	form, imagePath, err := api.bindBuildForm(ctx, "")
	if err != nil {
		return err
	}

	b, err := api.svc.Create(ctx.Request().Context(), contextIdentity(ctx), form, imagePath)
	if err != nil {
		return errors.Wrap(err, "creating build")
	}
	return ctx.JSON(http.StatusCreated, b)
}

func (api *communityApi) update(ctx echo.Context) error {
	// ownership must be settled before bindBuildForm writes the uploaded
	// photo under the build's key
	b, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting build")
	}
	if b.AuthorEmail != contextIdentity(ctx).Email {
		return errors.Wrap(community.ErrNotOwner, "updating build")
	}

	form, imagePath, err := api.bindBuildForm(ctx, b.ID)
	if err != nil {
		return err
	}

	b, err = api.svc.Update(ctx.Request().Context(), contextIdentity(ctx), b.ID, form, imagePath)
	if err != nil {
		return errors.Wrap(err, "updating build")
	}
	return ctx.JSON(http.StatusOK, b)
}

func (api *communityApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextIdentity(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting build")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// analyze runs the AI config analyzer over the build's component list.
func (api *communityApi) analyze(ctx echo.Context) error {
	if api.assistant == nil {
		return errHttpNotFound
	}
	b, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting build")
	}

	analysis, err := api.assistant.AnalyzeConfig(ctx.Request().Context(), b.Summary())
	if err != nil {
		return errors.Wrap(err, "analyzing build")
	}
	return ctx.JSON(http.StatusOK, analysis)
}

func (api *communityApi) bindBuildForm(ctx echo.Context, buildID string) (community.BuildForm, string, error) {
	var form community.BuildForm
	if err := ctx.Bind(&form); err != nil {
		return form, "", errors.Wrap(err, "binding to BuildForm")
	}
	if err := form.Validate(); err != nil {
		return form, "", err
	}

	// optional photo
	fh, err := ctx.FormFile("image")
	if err != nil {
		return form, "", nil
	}
	f, err := fh.Open()
	if err != nil {
		return form, "", errors.Wrap(err, "opening uploaded image")
	}
	defer f.Close()

	if buildID == "" {
		buildID = contextIdentity(ctx).ID
	}
	key := path.Join("builds", buildID, fh.Filename)
	if _, err = api.files.Save(ctx.Request().Context(), key, fh.Header.Get("Content-Type"), f); err != nil {
		return form, "", errors.Wrap(err, "storing build image")
	}
	return form, key, nil
}
