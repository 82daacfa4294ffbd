package activity

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	ErrNotFound            = errors.New("activity not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrAlreadyRegistered   = errors.New("member already registered")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrNoParticipants      = errors.New("activity has no participants")
)

// Activity is an event members register for. Registering awards Points.
type Activity struct {
	ID          int64
	Name        string
	Date        time.Time
	Location    string
	Points      int
	Description string
	CreatedAt   time.Time
}

type Participant struct {
	ApplicantID    int64
	MemberID       string
	FullName       string
	GraduationYear string
	District       string
	Phone          string
	RegisteredAt   time.Time
}

// Standing is one leaderboard line.
type Standing struct {
	MemberID     string
	FullName     string
	Nickname     string
	TotalPoints  int64
	Participated int64
}

type Award struct {
	EventID       int64
	EventName     string
	EventDate     time.Time
	PointsAwarded int
}

// PointsDetail lists the awards of one member, newest event first.
type PointsDetail struct {
	MemberID    string
	FullName    string
	Nickname    string
	TotalPoints int
	Awards      []Award
}

type Repository interface {
	List(ctx context.Context) ([]Activity, error)
	GetByID(ctx context.Context, id int64) (Activity, error)
	Create(ctx context.Context, a Activity) (Activity, error)
	Update(ctx context.Context, a Activity) (Activity, error)
	Delete(ctx context.Context, id int64) error

	AddApplicant(ctx context.Context, eventID int64, memberID string) error
	IsRegistered(ctx context.Context, eventID int64, memberID string) (bool, error)
	AwardPoints(ctx context.Context, eventID int64, memberID string, points int) error
	Participants(ctx context.Context, eventID int64) ([]Participant, error)
	// DeleteParticipants removes the points and registrations of an event
	// and returns the number of registrations removed.
	DeleteParticipants(ctx context.Context, eventID int64) (int64, error)
	DeleteParticipant(ctx context.Context, eventID int64, memberID string) error

	Leaderboard(ctx context.Context) ([]Standing, error)
	Awards(ctx context.Context, memberID string) ([]Award, error)
}
