package services

import (
	"context"

	"github.com/sanjaithai/backoffice/modules/member/domain/entities/member"
)

// Unspecified labels members that have no value for a grouped field.
const Unspecified = "ไม่ระบุ"

type Stats struct {
	Total    int64
	Honorary int64
	Regular  int64
	General  int64
}

type DashboardService struct {
	repo member.StatsRepository
}

func NewDashboardService(repository member.StatsRepository) *DashboardService {
	return &DashboardService{repo: repository}
}

// Stats counts every member and the members of each known type.
func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	groups, err := s.repo.CountBy(ctx, member.FieldType)
	if err != nil {
		return Stats{}, err
	}
	var out Stats
	for _, g := range groups {
		out.Total += g.Count
		switch g.Key {
		case member.TypeHonorary:
			out.Honorary += g.Count
		case member.TypeRegular:
			out.Regular += g.Count
		case member.TypeGeneral:
			out.General += g.Count
		}
	}
	return out, nil
}

// Breakdown counts members per value of f.
func (s *DashboardService) Breakdown(ctx context.Context, f member.Field) (map[string]int64, error) {
	groups, err := s.repo.CountBy(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(groups))
	for _, g := range groups {
		key := g.Key
		if key == "" {
			key = Unspecified
		}
		out[key] += g.Count
	}
	return out, nil
}
