package models

// Course is an entry of the static course catalog.
type Course struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	Duration  string   `json:"duration"`
	Subjects  []string `json:"subjects"`
	Semesters int      `json:"semesters"`
}

// Snapshot copies the course for embedding in a student record.
func (c Course) Snapshot() CourseSnapshot {
	subjects := make([]string, len(c.Subjects))
	copy(subjects, c.Subjects)
	return CourseSnapshot{
		ID:        c.ID,
		Title:     c.Title,
		Type:      c.Type,
		Duration:  c.Duration,
		Subjects:  subjects,
		Semesters: c.Semesters,
	}
}
