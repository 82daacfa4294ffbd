package controllers

import (
	"time"

	"github.com/sanjaithai/backoffice/modules/activity/domain/entities/activity"
)

type ActivityResponse struct {
	ID          int64  `json:"event_id"`
	Name        string `json:"event_name"`
	Date        string `json:"event_date"`
	Location    string `json:"location"`
	Points      int    `json:"points"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func toActivityResponse(a activity.Activity) ActivityResponse {
	return ActivityResponse{
		ID:          a.ID,
		Name:        a.Name,
		Date:        a.Date.Format(time.DateOnly),
		Location:    a.Location,
		Points:      a.Points,
		Description: a.Description,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

type ParticipantResponse struct {
	ID             int64  `json:"id"`
	MemberID       string `json:"member_id"`
	FullName       string `json:"full_name"`
	GraduationYear string `json:"graduation_year"`
	District       string `json:"district"`
	Phone          string `json:"phone"`
	RegisteredAt   string `json:"registered_at"`
}

func toParticipantResponse(p activity.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:             p.ApplicantID,
		MemberID:       p.MemberID,
		FullName:       p.FullName,
		GraduationYear: p.GraduationYear,
		District:       p.District,
		Phone:          p.Phone,
		RegisteredAt:   p.RegisteredAt.Format(time.RFC3339),
	}
}

type StandingResponse struct {
	MemberID     string `json:"member_id"`
	FullName     string `json:"full_name"`
	Nickname     string `json:"nickname"`
	TotalPoints  int64  `json:"total_points"`
	Participated int64  `json:"events_participated"`
}

type AwardResponse struct {
	EventID       int64  `json:"event_id"`
	EventName     string `json:"event_name"`
	EventDate     string `json:"event_date"`
	PointsAwarded int    `json:"points_awarded"`
}

type PointsDetailResponse struct {
	MemberID    string          `json:"member_id"`
	FullName    string          `json:"full_name"`
	Nickname    string          `json:"nickname"`
	TotalPoints int             `json:"total_points"`
	Events      []AwardResponse `json:"events"`
}

func toPointsDetailResponse(d activity.PointsDetail) PointsDetailResponse {
	out := PointsDetailResponse{
		MemberID:    d.MemberID,
		FullName:    d.FullName,
		Nickname:    d.Nickname,
		TotalPoints: d.TotalPoints,
		Events:      make([]AwardResponse, 0, len(d.Awards)),
	}
	for _, a := range d.Awards {
		out.Events = append(out.Events, AwardResponse{
			EventID:       a.EventID,
			EventName:     a.EventName,
			EventDate:     a.EventDate.Format(time.DateOnly),
			PointsAwarded: a.PointsAwarded,
		})
	}
	return out
}
