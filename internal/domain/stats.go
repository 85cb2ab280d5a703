package domain

// Breakdown names the per-box word counts
type Breakdown struct {
	Learning  int `json:"learning"`
	Familiar  int `json:"familiar"`
	Practiced int `json:"practiced"`
	Known     int `json:"known"`
	Mastered  int `json:"mastered"`
}

// Stats is the summary shown on badges and used for milestone gating
type Stats struct {
	TotalWords     int       `json:"totalWords"`
	DueForReview   int       `json:"dueForReview"`
	MasteryPercent int       `json:"masteryPercent"`
	Breakdown      Breakdown `json:"breakdown"`
}

// CategoryMastery counts mastered words of a category
type CategoryMastery struct {
	Mastered int `json:"mastered"`
	Total    int `json:"total"`
}
