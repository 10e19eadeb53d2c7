package echoapi

import (
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/leaderboard"
)

type leaderboardApi struct {
	svc      *leaderboard.Service
	logger   core.Logger
	upgrader websocket.Upgrader
}

func registerLeaderboardAPI(g *echo.Group, svc *leaderboard.Service, logger core.Logger) {
	api := leaderboardApi{
		svc:    svc,
		logger: logger,
		upgrader: websocket.Upgrader{
			// the API is consumed cross-origin by the web frontend
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	lg := g.Group("/leaderboard")
	lg.GET("", api.list)
	lg.GET("/ws", api.stream)
}

// Handlers

func (api *leaderboardApi) list(ctx echo.Context) error {
	entries, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}

	if limit := queryInt(ctx, "limit"); limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	return ctx.JSON(http.StatusOK, entries)
}

// stream pushes live leaderboard updates over a websocket. The client receives
// one JSON entry per update; ordering is by arrival, ranks are refreshed by
// re-fetching the list.
func (api *leaderboardApi) stream(ctx echo.Context) error {
	updates, err := api.svc.Subscribe(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "subscribing to leaderboard updates")
	}

	conn, err := api.upgrader.Upgrade(ctx.Response(), ctx.Request(), nil)
	if err != nil {
		return errors.Wrap(err, "upgrading to websocket")
	}
	defer conn.Close()

	// drain client frames to detect disconnects
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return nil
		case e, ok := <-updates:
			if !ok {
				return nil
			}
			if err := conn.WriteJSON(e); err != nil {
				api.logger.Debug("leaderboard websocket closed: " + err.Error())
				return nil
			}
		}
	}
}

func queryInt(ctx echo.Context, name string) int {
	if v := ctx.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return 0
}
