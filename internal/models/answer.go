package models

import "time"

type Answer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	QuestionID uint      `gorm:"not null;index" json:"question_id"`
	Question   *Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	AuthorID   uint      `gorm:"not null;index" json:"author_id"`
	Author     User      `gorm:"foreignKey:AuthorID" json:"-"`
	Text       string    `gorm:"size:1000;not null" json:"text"`
	CreatedAt  time.Time `gorm:"index" json:"created"`
	Rating     int       `gorm:"not null;default:0;index" json:"rating"`
}

func (Answer) TableName() string { return "answers" }

func (a *Answer) VoteTarget() VoteTarget {
	return VoteTarget{Kind: TargetAnswer, ID: a.ID}
}
