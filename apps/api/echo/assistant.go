package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core"
	"github.com/pcacademy/backend/core/assistant"
	"github.com/pcacademy/backend/core/catalog"
)

type assistantApi struct {
	svc   *assistant.Service
	paths *catalog.Service
}

func registerAssistantAPI(g *echo.Group, optJwt echo.MiddlewareFunc, svc *assistant.Service, paths *catalog.Service) {
	api := assistantApi{svc: svc, paths: paths}

	ag := g.Group("/assistant", optJwt)
	// TODO: rate limit per user once abuse shows up
	ag.POST("/query", api.query)
	ag.POST("/analyze-config", api.analyzeConfig)
	ag.POST("/explain-question", api.explainQuestion)
}

// Handlers

func (api *assistantApi) query(ctx echo.Context) error {
	var data AssistantQueryRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AssistantQueryRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	answer, err := api.svc.ComponentQuery(ctx.Request().Context(), data.Query)
	if err != nil {
		return errors.Wrap(err, "querying assistant")
	}
	return ctx.JSON(http.StatusOK, answer)
}

func (api *assistantApi) analyzeConfig(ctx echo.Context) error {
	var data AnalyzeConfigRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AnalyzeConfigRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	analysis, err := api.svc.AnalyzeConfig(ctx.Request().Context(), data.Config)
	if err != nil {
		return errors.Wrap(err, "analyzing config")
	}
	return ctx.JSON(http.StatusOK, analysis)
}

// explainQuestion generates an explanation for a quiz question's correct
// answer; the question is resolved server-side so the correct option never
// has to come from the client.
func (api *assistantApi) explainQuestion(ctx echo.Context) error {
	var data ExplainQuestionRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ExplainQuestionRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	p, err := api.paths.Get(ctx.Request().Context(), data.PathID)
	if err != nil {
		return errors.Wrap(err, "getting learning path")
	}
	q, ok := p.Quiz.Question(data.QuestionID)
	if !ok {
		return errHttpNotFound
	}

	options := make([]assistant.QuizOption, len(q.Options))
	for i, opt := range q.Options {
		options[i] = assistant.QuizOption{ID: opt.ID, Text: opt.Text}
	}
	explanation, err := api.svc.ExplainQuizAnswer(ctx.Request().Context(), q.Text, options, q.CorrectOptionID)
	if err != nil {
		return errors.Wrap(err, "explaining question")
	}
	return ctx.JSON(http.StatusOK, explanation)
}

type (
	AssistantQueryRequest struct {
		Query string `json:"query" validate:"required,max=2000"`
	}

	AnalyzeConfigRequest struct {
		Config string `json:"config" validate:"required,max=5000"`
	}

	ExplainQuestionRequest struct {
		PathID     string `json:"pathId" validate:"required"`
		QuestionID string `json:"questionId" validate:"required"`
	}
)

func (r *AssistantQueryRequest) Validate() error {
	r.Query = core.CleanString(r.Query)
	return core.Validate.Struct(r)
}

func (r *AnalyzeConfigRequest) Validate() error {
	r.Config = core.CleanString(r.Config)
	return core.Validate.Struct(r)
}

func (r *ExplainQuestionRequest) Validate() error {
	return core.Validate.Struct(r)
}
