package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/sanjaithai/backoffice/modules/activity/domain/entities/activity"
	"github.com/sanjaithai/backoffice/modules/logging/domain/entities/transferlog"
	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
	"github.com/sanjaithai/backoffice/pkg/composables"
	"github.com/sanjaithai/backoffice/pkg/metrics"
	"github.com/sanjaithai/backoffice/pkg/repo"
	"github.com/sanjaithai/backoffice/pkg/spreadsheet"
)

const (
	ParticipantsSheet = "รายชื่อผู้เข้าร่วม"
	participantsMode  = "participants"
)

var participantHeader = []string{"ลำดับ", "เลขที่", "ชื่อ-สกุล", "รุ่น", "อำเภอ", "เบอร์โทร"}

// Registration is the result of registering a member for an activity.
type Registration struct {
	Member member.Member
	Points int
}

// ParticipantsFile is a rendered participant list.
type ParticipantsFile struct {
	Filename string
	Content  []byte
	Count    int
}

type ActivityService struct {
	repo    activity.Repository
	members member.Repository
	tx      repo.Transactor
	logs    transferlog.Repository
	now     func() time.Time
}

func NewActivityService(repository activity.Repository, members member.Repository, tx repo.Transactor, logs transferlog.Repository) *ActivityService {
	return &ActivityService{
		repo:    repository,
		members: members,
		tx:      tx,
		logs:    logs,
		now:     time.Now,
	}
}

func (s *ActivityService) List(ctx context.Context) ([]activity.Activity, error) {
	return s.repo.List(ctx)
}

func (s *ActivityService) GetByID(ctx context.Context, id int64) (activity.Activity, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ActivityService) Create(ctx context.Context, dto *activity.SaveDTO) (activity.Activity, error) {
	var a activity.Activity
	if err := dto.Apply(&a); err != nil {
		return activity.Activity{}, err
	}
	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return activity.Activity{}, err
	}
	composables.UseLogger(ctx).WithField("event_id", created.ID).Info("activity created")
	return created, nil
}

func (s *ActivityService) Update(ctx context.Context, id int64, dto *activity.SaveDTO) (activity.Activity, error) {
	var updated activity.Activity
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		current, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := dto.Apply(&current); err != nil {
			return err
		}
		updated, err = s.repo.Update(txCtx, current)
		return err
	})
	if err != nil {
		return activity.Activity{}, err
	}
	return updated, nil
}

// Delete removes an activity together with its registrations and points.
func (s *ActivityService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	composables.UseLogger(ctx).WithField("event_id", id).Info("activity deleted")
	return nil
}

// Register enrolls a member and awards the activity's points in one
// transaction. A member can register for an activity once.
func (s *ActivityService) Register(ctx context.Context, eventID int64, memberID string) (Registration, error) {
	memberID = strings.TrimSpace(memberID)
	var reg Registration
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		m, err := s.members.GetByID(txCtx, memberID)
		if errors.Is(err, member.ErrNotFound) {
			return activity.ErrMemberNotFound
		}
		if err != nil {
			return err
		}
		a, err := s.repo.GetByID(txCtx, eventID)
		if err != nil {
			return err
		}
		registered, err := s.repo.IsRegistered(txCtx, eventID, memberID)
		if err != nil {
			return err
		}
		if registered {
			return activity.ErrAlreadyRegistered
		}
		if err := s.repo.AddApplicant(txCtx, eventID, memberID); err != nil {
			return err
		}
		if err := s.repo.AwardPoints(txCtx, eventID, memberID, a.Points); err != nil {
			return err
		}
		reg = Registration{Member: m, Points: a.Points}
		return nil
	})
	if err != nil {
		return Registration{}, err
	}
	composables.UseLogger(ctx).WithFields(logrus.Fields{
		"event_id":  eventID,
		"member_id": memberID,
		"points":    reg.Points,
	}).Info("member registered")
	return reg, nil
}

func (s *ActivityService) Participants(ctx context.Context, eventID int64) ([]activity.Participant, error) {
	if _, err := s.repo.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.Participants(ctx, eventID)
}

// DeleteParticipants clears every registration of an activity and the
// points they earned.
func (s *ActivityService) DeleteParticipants(ctx context.Context, eventID int64) (int64, error) {
	var removed int64
	err := s.tx.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.GetByID(txCtx, eventID); err != nil {
			return err
		}
		var err error
		removed, err = s.repo.DeleteParticipants(txCtx, eventID)
		return err
	})
	return removed, err
}

func (s *ActivityService) DeleteParticipant(ctx context.Context, eventID int64, memberID string) error {
	return s.tx.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.DeleteParticipant(txCtx, eventID, strings.TrimSpace(memberID))
	})
}

// ParticipantsWorkbook renders the participant list of an activity.
func (s *ActivityService) ParticipantsWorkbook(ctx context.Context, eventID int64) (ParticipantsFile, error) {
	a, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return ParticipantsFile{}, err
	}
	participants, err := s.repo.Participants(ctx, eventID)
	if err != nil {
		return ParticipantsFile{}, err
	}
	if len(participants) == 0 {
		return ParticipantsFile{}, activity.ErrNoParticipants
	}

	data := spreadsheet.SheetData{
		Name: ParticipantsSheet,
		Preamble: []string{
			"รายชื่อผู้เข้าร่วมกิจกรรม",
			"ชื่อกิจกรรม: " + a.Name,
			"วันที่จัดกิจกรรม: " + a.Date.Format(time.DateOnly),
			"สถานที่: " + orDash(a.Location),
			fmt.Sprintf("จำนวนผู้เข้าร่วม: %d คน", len(participants)),
		},
		Header: participantHeader,
	}
	for i, p := range participants {
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(i + 1),
			p.MemberID,
			orDash(p.FullName),
			orDash(p.GraduationYear),
			orDash(p.District),
			orDash(p.Phone),
		})
	}

	w := spreadsheet.NewWriter()
	defer func() { _ = w.Close() }()
	if err := w.AddSheet(data); err != nil {
		return ParticipantsFile{}, err
	}
	content, err := w.Bytes()
	metrics.ObserveTransfer(string(transferlog.KindExport), participantsMode, err)
	if err != nil {
		return ParticipantsFile{}, err
	}

	file := ParticipantsFile{
		Filename: participantsFilename(a.Name, s.now()),
		Content:  content,
		Count:    len(participants),
	}
	s.audit(ctx, file)
	return file, nil
}

func (s *ActivityService) audit(ctx context.Context, file ParticipantsFile) {
	if s.logs == nil {
		return
	}
	err := s.logs.Create(ctx, &transferlog.TransferLog{
		Kind:        transferlog.KindExport,
		Mode:        participantsMode,
		Filename:    file.Filename,
		Count:       file.Count,
		PerformedBy: composables.UseActor(ctx),
	})
	if err != nil {
		metrics.AuditWriteFailuresTotal.Inc()
		composables.UseLogger(ctx).WithError(err).WithField("filename", file.Filename).Warn("transfer log not written")
	}
}

func participantsFilename(name string, at time.Time) string {
	clean := strings.Join(strings.FieldsFunc(name, func(r rune) bool {
		return r == ' ' || r == '/' || r == '\\' || r == '"'
	}), "_")
	if clean == "" {
		clean = "activity"
	}
	return fmt.Sprintf("participants_%s_%s.xlsx", clean, at.Format("20060102-150405"))
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func (s *ActivityService) Leaderboard(ctx context.Context) ([]activity.Standing, error) {
	return s.repo.Leaderboard(ctx)
}

func (s *ActivityService) MemberPoints(ctx context.Context, memberID string) (activity.PointsDetail, error) {
	m, err := s.members.GetByID(ctx, strings.TrimSpace(memberID))
	if errors.Is(err, member.ErrNotFound) {
		return activity.PointsDetail{}, activity.ErrMemberNotFound
	}
	if err != nil {
		return activity.PointsDetail{}, err
	}
	awards, err := s.repo.Awards(ctx, m.MemberID)
	if err != nil {
		return activity.PointsDetail{}, err
	}
	detail := activity.PointsDetail{
		MemberID: m.MemberID,
		FullName: m.FullName,
		Nickname: m.Nickname,
		Awards:   awards,
	}
	for _, a := range awards {
		detail.TotalPoints += a.PointsAwarded
	}
	return detail, nil
}
