package catalog

type (
	QuizOption struct {
		ID   string `json:"id"`
		Text string `json:"text"`
	}

	QuizQuestion struct {
		ID              string       `json:"id"`
		Text            string       `json:"text"`
		Options         []QuizOption `json:"options"`
		CorrectOptionID string       `json:"correctOptionId"`
	}

	Quiz struct {
		Title     string         `json:"title"`
		Questions []QuizQuestion `json:"questions"`
	}

	Lesson struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Description string `json:"description"`
	}

	// Module is an ordered group of lessons within a path. Lessons are totally
	// ordered within a path by (module index, lesson index).
	Module struct {
		ID      string   `json:"id"`
		Title   string   `json:"title"`
		Lessons []Lesson `json:"lessons"`
	}

	LearningPath struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Description string   `json:"description"`
		ImagePath   string   `json:"imagePath,omitempty"`
		ImageURL    string   `json:"imageUrl,omitempty"`
		Modules     []Module `json:"modules"`
		Quiz        *Quiz    `json:"quiz,omitempty"`
	}
)

// HasQuiz reports whether the path carries a quiz with at least one question.
// Only such paths contribute to the leaderboard total.
func (p LearningPath) HasQuiz() bool {
	return p.Quiz != nil && len(p.Quiz.Questions) > 0
}

// FindLesson locates a lesson by module and lesson id, returning positional
// indices within the path.
func (p LearningPath) FindLesson(moduleID, lessonID string) (moduleIdx, lessonIdx int, ok bool) {
	for mi, m := range p.Modules {
		if m.ID != moduleID {
			continue
		}
		for li, l := range m.Lessons {
			if l.ID == lessonID {
				return mi, li, true
			}
		}
	}
	return 0, 0, false
}

// LessonIDSet returns the set of lesson ids present in the path. Used to drop
// stale completion records whose lessons no longer exist in the curriculum.
func (p LearningPath) LessonIDSet() map[string]bool {
	ids := make(map[string]bool)
	for _, m := range p.Modules {
		for _, l := range m.Lessons {
			ids[l.ID] = true
		}
	}
	return ids
}

// LessonCount returns the number of lessons across all modules.
func (p LearningPath) LessonCount() int {
	var n int
	for _, m := range p.Modules {
		n += len(m.Lessons)
	}
	return n
}

// Question returns the quiz question with the given id, if any.
func (q *Quiz) Question(id string) (QuizQuestion, bool) {
	if q == nil {
		return QuizQuestion{}, false
	}
	for _, qq := range q.Questions {
		if qq.ID == id {
			return qq, true
		}
	}
	return QuizQuestion{}, false
}
