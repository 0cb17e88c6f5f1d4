package projections

import (
	"context"

	"palestra/internal/adapters/storage/member"
	"palestra/internal/application/listutil"
	domainMember "palestra/internal/domain/member"
	"palestra/internal/domain/notification"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Page   listutil.PageParams
	Status string
	Search string
}

// MemberWithStanding is one member row with the missed-booking standing.
type MemberWithStanding struct {
	ID           string
	Name         string
	Email        string
	Company      string
	MemberNumber string
	Status       string
	Missed       int
	TrafficLight notification.TrafficLight
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members  []MemberWithStanding
	PageInfo listutil.PageInfo
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
	Policy      notification.Policy
}

// QueryGetMemberList retrieves one page of members with their traffic-light
// standing derived from missed bookings.
// PRE: page params are normalised (listutil.ParsePageParams)
// POST: returns at most PerPage members plus total-aware pagination info
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	total, err := deps.MemberStore.Count(ctx)
	if err != nil {
		return GetMemberListResult{}, err
	}

	members, err := deps.MemberStore.List(ctx, member.ListFilter{
		Limit:  query.Page.PerPage,
		Offset: (query.Page.Page - 1) * query.Page.PerPage,
		Status: query.Status,
		Search: query.Search,
	})
	if err != nil {
		return GetMemberListResult{}, err
	}

	// The lean list has no histories; load them once for the standing
	// computation. Keyed by ID so the page ordering is preserved.
	hydrated, err := deps.MemberStore.ListWithHistory(ctx)
	if err != nil {
		return GetMemberListResult{}, err
	}
	missedByID := make(map[string]int, len(hydrated))
	for _, m := range hydrated {
		missedByID[m.ID] = m.MissedBookings()
	}

	rows := make([]MemberWithStanding, 0, len(members))
	for _, m := range members {
		missed := missedByID[m.ID]
		rows = append(rows, MemberWithStanding{
			ID:           m.ID,
			Name:         m.FullName(),
			Email:        m.Email,
			Company:      m.Company,
			MemberNumber: m.MemberNumber,
			Status:       m.Status,
			Missed:       missed,
			TrafficLight: notification.TrafficLightForMissed(missed, deps.Policy),
		})
	}

	return GetMemberListResult{
		Members:  rows,
		PageInfo: listutil.NewPageInfo(query.Page.Page, query.Page.PerPage, total),
	}, nil
}

// GetMemberProfileQuery carries the profile query.
type GetMemberProfileQuery struct {
	MemberID string
}

// MemberProfileResult is the full member detail with histories and standing.
type MemberProfileResult struct {
	Member       domainMember.Member
	Missed       int
	TrafficLight notification.TrafficLight
}

// QueryGetMemberProfile retrieves one member with full history and standing.
func QueryGetMemberProfile(ctx context.Context, query GetMemberProfileQuery, deps GetMemberListDeps) (MemberProfileResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, query.MemberID)
	if err != nil {
		return MemberProfileResult{}, err
	}
	missed := m.MissedBookings()
	return MemberProfileResult{
		Member:       m,
		Missed:       missed,
		TrafficLight: notification.TrafficLightForMissed(missed, deps.Policy),
	}, nil
}
