package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/progress"
)

type progressApi struct {
	svc   *progress.Service
	paths *catalog.Service
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, paths *catalog.Service) {
	api := progressApi{svc: svc, paths: paths}

	g.POST("/paths/:id/lessons/:moduleID/:lessonID/toggle", api.toggleLesson, jwt)
	g.GET("/me/progress/:pathID", api.pathProgress, jwt)
	g.GET("/me/incorrect-answers", api.incorrectAnswers, jwt)
}

// Handlers

// toggleLesson flips the lesson's completed state and returns the new one.
func (api *progressApi) toggleLesson(ctx echo.Context) error {
	p, err := api.paths.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting learning path")
	}
	if _, _, ok := p.FindLesson(ctx.Param("moduleID"), ctx.Param("lessonID")); !ok {
		return errHttpNotFound
	}

	completed, err := api.svc.ToggleLessonCompletion(
		ctx.Request().Context(), contextIdentity(ctx), p.ID, ctx.Param("moduleID"), ctx.Param("lessonID"))
	if err != nil {
		return errors.Wrap(err, "toggling lesson completion")
	}
	return ctx.JSON(http.StatusOK, ToggleResponse{Completed: completed})
}

func (api *progressApi) pathProgress(ctx echo.Context) error {
	ident := contextIdentity(ctx)
	pathID := ctx.Param("pathID")

	ids, err := api.svc.CompletedLessonIDsForPath(ctx.Request().Context(), ident, pathID)
	if err != nil {
		return errors.Wrap(err, "getting completed lessons")
	}
	count, err := api.svc.CompletedCountForPath(ctx.Request().Context(), ident, pathID)
	if err != nil {
		return errors.Wrap(err, "counting completed lessons")
	}

	lessonIDs := make([]string, 0, len(ids))
	for id := range ids {
		lessonIDs = append(lessonIDs, id)
	}
	return ctx.JSON(http.StatusOK, PathProgressResponse{
		PathID:             pathID,
		CompletedLessonIDs: lessonIDs,
		CompletedCount:     count,
	})
}

// incorrectAnswers builds the review view: per path, the questions the user
// ever answered incorrectly, resolved against the current curriculum. Stale
// entries (removed paths or questions) are dropped.
func (api *progressApi) incorrectAnswers(ctx echo.Context) error {
	ident := contextIdentity(ctx)

	byPath, err := api.svc.IncorrectlyAnsweredQuestions(ctx.Request().Context(), ident)
	if err != nil {
		return errors.Wrap(err, "getting incorrect answers")
	}

	out := make([]IncorrectAnswersGroup, 0, len(byPath))
	for pathID, questionIDs := range byPath {
		p, err := api.paths.Get(ctx.Request().Context(), pathID)
		if err != nil {
			if errors.Cause(err) == catalog.ErrNotFound {
				continue
			}
			return errors.Wrap(err, "getting learning path")
		}

		group := IncorrectAnswersGroup{PathID: pathID, PathTitle: p.Title}
		for _, qid := range questionIDs {
			q, ok := p.Quiz.Question(qid)
			if !ok {
				continue
			}
			group.Questions = append(group.Questions, ReviewQuestion{
				ID:              q.ID,
				Text:            q.Text,
				Options:         q.Options,
				CorrectOptionID: q.CorrectOptionID,
			})
		}
		if len(group.Questions) > 0 {
			out = append(out, group)
		}
	}
	return ctx.JSON(http.StatusOK, out)
}

type (
	ToggleResponse struct {
		Completed bool `json:"completed"`
	}

	PathProgressResponse struct {
		PathID             string   `json:"pathId"`
		CompletedLessonIDs []string `json:"completedLessonIds"`
		CompletedCount     int      `json:"completedCount"`
	}

	// ReviewQuestion includes the correct option: the review view exists to
	// show learners the right answer.
	ReviewQuestion struct {
		ID              string               `json:"id"`
		Text            string               `json:"text"`
		Options         []catalog.QuizOption `json:"options"`
		CorrectOptionID string               `json:"correctOptionId"`
	}

	IncorrectAnswersGroup struct {
		PathID    string           `json:"pathId"`
		PathTitle string           `json:"pathTitle"`
		Questions []ReviewQuestion `json:"questions"`
	}
)
