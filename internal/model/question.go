package model

// Question is one item of the quiz question bank. True/false items carry the
// options "True" and "False"; Answer is always the text of the correct option.
// swagger:model Question
type Question struct {
	ID           uint       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Category     string     `gorm:"index;size:64;not null" json:"category"`
	Difficulty   Difficulty `gorm:"index;size:16;default:'medium'" json:"difficulty"`
	QuestionType string     `gorm:"size:16;default:'text'" json:"questionType"`
	Question     string     `gorm:"not null" json:"question"`
	Options      []string   `gorm:"serializer:json" json:"options"`
	Answer       string     `gorm:"not null" json:"answer"`
	Explanation  string     `json:"explanation,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// CategoryCount is the number of bank questions in one category.
type CategoryCount struct {
	Category string
	Total    int
}
