package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core/forum"
)

type forumApi struct {
	svc *forum.Service
}

func registerForumAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *forum.Service) {
	api := forumApi{svc: svc}

	pg := g.Group("/posts")
	pg.GET("", api.list)
	pg.GET("/:id", api.retrieve)

	ag := pg.Group("", jwt)
	ag.POST("", api.create)
	ag.POST("/:id/replies", api.reply)
	ag.DELETE("/:id", api.destroy)
}

// Handlers

func (api *forumApi) list(ctx echo.Context) error {
	posts, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *forumApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting post")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *forumApi) create(ctx echo.Context) error {
	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), contextIdentity(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *forumApi) reply(ctx echo.Context) error {
	var data forum.NewReply
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReply")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.svc.AddReply(ctx.Request().Context(), contextIdentity(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "adding reply")
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *forumApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), contextIdentity(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting post")
	}
	return ctx.NoContent(http.StatusNoContent)
}
