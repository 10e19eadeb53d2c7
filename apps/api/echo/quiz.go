package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/progress"
)

type quizApi struct {
	paths    *catalog.Service
	progress *progress.Service
}

func registerQuizAPI(g *echo.Group, optJwt echo.MiddlewareFunc, paths *catalog.Service, progressSvc *progress.Service) {
	api := quizApi{paths: paths, progress: progressSvc}

	qg := g.Group("/paths/:id/quiz", optJwt)
	qg.GET("", api.retrieve)
	qg.POST("/submit", api.submit)
}

// Handlers

// retrieve serves the quiz questions. Correct answers stay server-side;
// scoring happens on submission.
func (api *quizApi) retrieve(ctx echo.Context) error {
	p, err := api.paths.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting learning path")
	}
	if !p.HasQuiz() {
		return errHttpNotFound
	}

	out := QuizResponse{
		PathID: p.ID,
		Title:  p.Quiz.Title,
	}
	for _, q := range p.Quiz.Questions {
		out.Questions = append(out.Questions, QuizQuestionResponse{
			ID:      q.ID,
			Text:    q.Text,
			Options: q.Options,
		})
	}
	return ctx.JSON(http.StatusOK, out)
}

// submit scores the submitted answers. Authenticated submissions update the
// user's records and leaderboard entry; anonymous ones are scored only.
func (api *quizApi) submit(ctx echo.Context) error {
	var data QuizSubmission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizSubmission")
	}

	res, err := api.progress.SubmitQuiz(
		ctx.Request().Context(), contextIdentity(ctx), ctx.Param("id"), data.Answers)
	if err != nil {
		return errors.Wrap(err, "submitting quiz")
	}
	return ctx.JSON(http.StatusOK, res)
}

type (
	QuizQuestionResponse struct {
		ID      string               `json:"id"`
		Text    string               `json:"text"`
		Options []catalog.QuizOption `json:"options"`
	}

	QuizResponse struct {
		PathID    string                 `json:"pathId"`
		Title     string                 `json:"title"`
		Questions []QuizQuestionResponse `json:"questions"`
	}

	// QuizSubmission maps question ids to the selected option ids.
	QuizSubmission struct {
		Answers map[string]string `json:"answers"`
	}
)
