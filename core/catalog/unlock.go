package catalog

// Unlocked decides whether the lesson at (moduleIdx, lessonIdx) is accessible
// given the set of completed lesson ids for the path. Pure function; callers
// fetch the completed set first and skip gating entirely for anonymous users
// (progress is not tracked without an identity).
//
// The very first lesson of a path is always open. Every other lesson requires
// its immediately preceding lesson (previous lesson in the same module, else
// the last lesson of the nearest prior non-empty module) to be completed.
// When every prior module is empty there is no preceding lesson to complete;
// the lesson stays locked. That is a curriculum-authoring constraint: modules
// should not be empty.
func Unlocked(p LearningPath, moduleIdx, lessonIdx int, completedLessonIDs map[string]bool) bool {
	if moduleIdx < 0 || moduleIdx >= len(p.Modules) {
		return false
	}
	if lessonIdx < 0 || lessonIdx >= len(p.Modules[moduleIdx].Lessons) {
		return false
	}

	if moduleIdx == 0 && lessonIdx == 0 {
		return true
	}

	prev, ok := precedingLesson(p, moduleIdx, lessonIdx)
	if !ok {
		return false
	}
	return completedLessonIDs[prev.ID]
}

// precedingLesson returns the lesson immediately before (moduleIdx, lessonIdx)
// in the path's total order.
func precedingLesson(p LearningPath, moduleIdx, lessonIdx int) (Lesson, bool) {
	if lessonIdx > 0 {
		return p.Modules[moduleIdx].Lessons[lessonIdx-1], true
	}
	for mi := moduleIdx - 1; mi >= 0; mi-- {
		if lessons := p.Modules[mi].Lessons; len(lessons) > 0 {
			return lessons[len(lessons)-1], true
		}
	}
	return Lesson{}, false
}
