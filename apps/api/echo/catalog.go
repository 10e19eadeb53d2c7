package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pcacademy/backend/core/catalog"
	"github.com/pcacademy/backend/core/progress"
)

type catalogApi struct {
	svc      *catalog.Service
	progress *progress.Service
}

func registerCatalogAPI(g *echo.Group, optJwt echo.MiddlewareFunc, svc *catalog.Service, progressSvc *progress.Service) {
	api := catalogApi{svc: svc, progress: progressSvc}

	pg := g.Group("/paths", optJwt)
	pg.GET("", api.list)
	pg.GET("/:id", api.retrieve)
	pg.GET("/:id/lessons/:moduleID/:lessonID", api.lesson)
}

// Handlers

// list returns path summaries. For authenticated callers each summary carries
// the user's completion count and best quiz score.
func (api *catalogApi) list(ctx echo.Context) error {
	paths, err := api.svc.All(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying learning paths")
	}

	ident := contextIdentity(ctx)
	out := make([]PathSummary, 0, len(paths))
	for _, p := range paths {
		summary := PathSummary{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			ImageURL:    p.ImageURL,
			LessonCount: p.LessonCount(),
			HasQuiz:     p.HasQuiz(),
		}
		if !ident.Anonymous() {
			count, err := api.progress.CompletedCountForPath(ctx.Request().Context(), ident, p.ID)
			if err != nil {
				return errors.Wrap(err, "counting completed lessons")
			}
			summary.CompletedCount = count

			if p.HasQuiz() {
				score, found, err := api.progress.HighestScoreForPath(ctx.Request().Context(), ident, p.ID)
				if err != nil {
					return errors.Wrap(err, "getting highest score")
				}
				if found {
					summary.HighestScore = &score
				}
			}
		}
		out = append(out, summary)
	}
	return ctx.JSON(http.StatusOK, out)
}

// retrieve returns the full path with per-lesson completed/unlocked state.
// Quiz answers are never exposed here; the quiz endpoints serve questions.
func (api *catalogApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting learning path")
	}

	ident := contextIdentity(ctx)
	completed := map[string]bool{}
	if !ident.Anonymous() {
		completed, err = api.progress.CompletedLessonIDsForPath(ctx.Request().Context(), ident, p.ID)
		if err != nil {
			return errors.Wrap(err, "getting completed lessons")
		}
	}

	out := PathDetail{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		HasQuiz:     p.HasQuiz(),
		Modules:     make([]ModuleDetail, 0, len(p.Modules)),
	}
	for mi, m := range p.Modules {
		md := ModuleDetail{
			ID:      m.ID,
			Title:   m.Title,
			Lessons: make([]LessonState, 0, len(m.Lessons)),
		}
		for li, l := range m.Lessons {
			md.Lessons = append(md.Lessons, LessonState{
				ID:        l.ID,
				Title:     l.Title,
				Completed: completed[l.ID],
				Unlocked:  ident.Anonymous() || catalog.Unlocked(p, mi, li, completed),
			})
		}
		out.Modules = append(out.Modules, md)
	}
	return ctx.JSON(http.StatusOK, out)
}

// lesson returns the lesson content, enforcing sequential unlock for signed-in
// users. Progress is not tracked without an identity, so nothing is gated for
// anonymous callers.
func (api *catalogApi) lesson(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting learning path")
	}

	mi, li, ok := p.FindLesson(ctx.Param("moduleID"), ctx.Param("lessonID"))
	if !ok {
		return errHttpNotFound
	}

	ident := contextIdentity(ctx)
	completed := map[string]bool{}
	if !ident.Anonymous() {
		completed, err = api.progress.CompletedLessonIDsForPath(ctx.Request().Context(), ident, p.ID)
		if err != nil {
			return errors.Wrap(err, "getting completed lessons")
		}
		if !catalog.Unlocked(p, mi, li, completed) {
			return errLessonLocked
		}
	}

	l := p.Modules[mi].Lessons[li]
	return ctx.JSON(http.StatusOK, LessonDetail{
		ID:          l.ID,
		ModuleID:    p.Modules[mi].ID,
		PathID:      p.ID,
		Title:       l.Title,
		Description: l.Description,
		Completed:   completed[l.ID],
	})
}

type (
	PathSummary struct {
		ID             string `json:"id"`
		Title          string `json:"title"`
		Description    string `json:"description"`
		ImageURL       string `json:"imageUrl,omitempty"`
		LessonCount    int    `json:"lessonCount"`
		CompletedCount int    `json:"completedCount"`
		HasQuiz        bool   `json:"hasQuiz"`
		HighestScore   *int   `json:"highestScore,omitempty"`
	}

	PathDetail struct {
		ID          string         `json:"id"`
		Title       string         `json:"title"`
		Description string         `json:"description"`
		ImageURL    string         `json:"imageUrl,omitempty"`
		HasQuiz     bool           `json:"hasQuiz"`
		Modules     []ModuleDetail `json:"modules"`
	}

	ModuleDetail struct {
		ID      string        `json:"id"`
		Title   string        `json:"title"`
		Lessons []LessonState `json:"lessons"`
	}

	LessonState struct {
		ID        string `json:"id"`
		Title     string `json:"title"`
		Completed bool   `json:"completed"`
		Unlocked  bool   `json:"unlocked"`
	}

	LessonDetail struct {
		ID          string `json:"id"`
		ModuleID    string `json:"moduleId"`
		PathID      string `json:"pathId"`
		Title       string `json:"title"`
		Description string `json:"description"`
		Completed   bool   `json:"completed"`
	}
)
