package catalog

import "testing"

func testPath() LearningPath {
	return LearningPath{
		ID: "p1",
		Modules: []Module{
			{ID: "m1", Lessons: []Lesson{{ID: "l1"}, {ID: "l2"}}},
			{ID: "m2", Lessons: []Lesson{{ID: "l3"}, {ID: "l4"}}},
		},
	}
}

func TestUnlocked(t *testing.T) {
	p := testPath()

	tests := []struct {
		name      string
		moduleIdx int
		lessonIdx int
		completed map[string]bool
		want      bool
	}{
		{"first lesson always open", 0, 0, nil, true},
		{"second lesson locked initially", 0, 1, nil, false},
		{"second lesson opens after first", 0, 1, map[string]bool{"l1": true}, true},
		{"next module locked until prior module done", 1, 0, map[string]bool{"l1": true}, false},
		{"next module opens after last lesson of prior", 1, 0, map[string]bool{"l2": true}, true},
		{"within second module", 1, 1, map[string]bool{"l3": true}, true},
		{"completion elsewhere does not help", 1, 1, map[string]bool{"l1": true, "l2": true}, false},
		{"module index out of range", 2, 0, map[string]bool{"l1": true}, false},
		{"lesson index out of range", 0, 5, map[string]bool{"l1": true}, false},
		{"negative indices", -1, 0, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Unlocked(p, tt.moduleIdx, tt.lessonIdx, tt.completed); got != tt.want {
				t.Errorf("Unlocked(%d, %d) = %v; want %v", tt.moduleIdx, tt.lessonIdx, got, tt.want)
			}
		})
	}
}

func TestUnlocked_emptyPriorModule(t *testing.T) {
	p := LearningPath{
		ID: "p1",
		Modules: []Module{
			{ID: "m1", Lessons: []Lesson{{ID: "l1"}}},
			{ID: "m2"}, // authored empty
			{ID: "m3", Lessons: []Lesson{{ID: "l2"}}},
		},
	}

	// the empty module is skipped when looking for the preceding lesson
	if Unlocked(p, 2, 0, map[string]bool{}) {
		t.Error("lesson after an empty module should stay locked until l1 is done")
	}
	if !Unlocked(p, 2, 0, map[string]bool{"l1": true}) {
		t.Error("lesson after an empty module should open once l1 is done")
	}

	// a path whose leading modules are all empty has no preceding lesson;
	// everything but the (nonexistent) first lesson stays locked
	p = LearningPath{Modules: []Module{{ID: "m1"}, {ID: "m2", Lessons: []Lesson{{ID: "l1"}, {ID: "l2"}}}}}
	if Unlocked(p, 1, 0, map[string]bool{"l1": true, "l2": true}) {
		t.Error("no preceding lesson exists; the lesson must stay locked")
	}
}
