package models

import "time"

type Tag struct {
	ID   uint   `gorm:"primaryKey" json:"-"`
	Text string `gorm:"uniqueIndex;size:20;not null" json:"text"`

	Questions []Question `gorm:"many2many:question_tags;" json:"-"`
}

type Question struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Caption   string    `gorm:"size:100;not null" json:"caption"`
	Text      string    `gorm:"size:1000;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created"`
	Rating    int       `gorm:"not null;default:0;index" json:"rating"`
	Tags      []Tag     `gorm:"many2many:question_tags;" json:"tags"`

	CorrectAnswer *CorrectAnswer `gorm:"foreignKey:QuestionID" json:"-"`
}

func (Question) TableName() string { return "questions" }

func (q *Question) VoteTarget() VoteTarget {
	return VoteTarget{Kind: TargetQuestion, ID: q.ID}
}

// CorrectAnswerID returns the id of the answer marked as best, if any.
func (q *Question) CorrectAnswerID() *uint {
	if q.CorrectAnswer == nil {
		return nil
	}
	id := q.CorrectAnswer.AnswerID
	return &id
}

// CorrectAnswer links a question to at most one of its own answers.
type CorrectAnswer struct {
	ID         uint `gorm:"primaryKey"`
	QuestionID uint `gorm:"uniqueIndex;not null"`
	AnswerID   uint `gorm:"not null;index"`
}
