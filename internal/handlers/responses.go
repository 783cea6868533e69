package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inna-tuzhikova/hasker/internal/forum"
	"github.com/inna-tuzhikova/hasker/internal/models"
)

type questionResponse struct {
	ID              uint      `json:"id"`
	Caption         string    `json:"caption"`
	Text            string    `json:"text"`
	Author          string    `json:"author"`
	Created         time.Time `json:"created"`
	Tags            []string  `json:"tags"`
	Rating          int       `json:"rating"`
	CorrectAnswerID *uint     `json:"correct_answer_id"`
}

type answerResponse struct {
	ID         uint      `json:"id"`
	Question   string    `json:"question"`
	QuestionID uint      `json:"question_id"`
	Author     string    `json:"author"`
	Text       string    `json:"text"`
	Created    time.Time `json:"created"`
	Rating     int       `json:"rating"`
	IsCorrect  bool      `json:"is_correct"`
}

type listResponse[T any] struct {
	Count    int64   `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newQuestionResponse(q *models.Question) questionResponse {
	tags := make([]string, 0, len(q.Tags))
	for _, t := range q.Tags {
		tags = append(tags, t.Text)
	}
	return questionResponse{
		ID:              q.ID,
		Caption:         q.Caption,
		Text:            q.Text,
		Author:          q.Author.Username,
		Created:         q.CreatedAt,
		Tags:            tags,
		Rating:          q.Rating,
		CorrectAnswerID: q.CorrectAnswerID(),
	}
}

func newQuestionResponses(questions []models.Question) []questionResponse {
	out := make([]questionResponse, 0, len(questions))
	for i := range questions {
		out = append(out, newQuestionResponse(&questions[i]))
	}
	return out
}

func newAnswerResponse(a *models.Answer, q *models.Question) answerResponse {
	correct := q.CorrectAnswerID()
	return answerResponse{
		ID:         a.ID,
		Question:   q.Caption,
		QuestionID: a.QuestionID,
		Author:     a.Author.Username,
		Text:       a.Text,
		Created:    a.CreatedAt,
		Rating:     a.Rating,
		IsCorrect:  correct != nil && *correct == a.ID,
	}
}

func newQuestionList(c *gin.Context, page forum.Page[models.Question]) listResponse[questionResponse] {
	return listResponse[questionResponse]{
		Count:    page.Count,
		Next:     pageURL(c, page.Next),
		Previous: pageURL(c, page.Previous),
		Results:  newQuestionResponses(page.Results),
	}
}

func publicUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"avatar":     u.Avatar,
		"created_at": u.CreatedAt,
	}
}

func privateUser(u *models.User) gin.H {
	return gin.H{
		"id":         u.ID,
		"username":   u.Username,
		"email":      u.Email,
		"avatar":     u.Avatar,
		"phone":      u.Phone,
		"created_at": u.CreatedAt,
	}
}
