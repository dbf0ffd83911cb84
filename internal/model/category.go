package model

// Category is a question-bank grouping within a subject, used to scope the
// pool of questions a teacher draws from when composing an exam.
type Category struct {
	ID        int    `json:"id"`
	SubjectID int    `json:"subject_id"`
	Name      string `json:"name"`
}

// CreateCategoryRequest is the payload for creating a question category.
type CreateCategoryRequest struct {
	SubjectID int    `json:"subject_id" binding:"required"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
}
