package projections

import (
	"context"
	"errors"
	"testing"

	"palestra/internal/application/listutil"
	domainMember "palestra/internal/domain/member"
	"palestra/internal/domain/notification"
)

func standingMember(id, first, last string, missed int) domainMember.Member {
	m := domainMember.Member{
		ID: id, FirstName: first, LastName: last,
		Email: id + "@example.com", MemberNumber: "M-" + id,
		Status: domainMember.StatusActive,
	}
	for i := 0; i < missed; i++ {
		m.BookingHistory = append(m.BookingHistory, domainMember.BookingEntry{
			Date: "2026-02-20", Time: "09:00", HasAccess: false,
		})
	}
	return m
}

// TestQueryGetMemberList_Standing tests the traffic-light computation.
func TestQueryGetMemberList_Standing(t *testing.T) {
	store := &mockMemberStore{members: []domainMember.Member{
		standingMember("m-1", "Giulia", "Bianchi", 0),
		standingMember("m-2", "Marco", "Rossi", 1),
		standingMember("m-3", "Sara", "Conti", 3),
	}}

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{
		Page: listutil.PageParams{Page: 1, PerPage: 20},
	}, GetMemberListDeps{
		MemberStore: store,
		Policy:      notification.DefaultPolicy(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Members) != 3 {
		t.Fatalf("expected 3 members, got %d", len(res.Members))
	}

	lights := map[string]notification.TrafficLight{}
	for _, m := range res.Members {
		lights[m.ID] = m.TrafficLight
	}
	if lights["m-1"] != notification.LightGreen {
		t.Errorf("expected m-1 green, got %s", lights["m-1"])
	}
	if lights["m-2"] != notification.LightOrange {
		t.Errorf("expected m-2 orange, got %s", lights["m-2"])
	}
	if lights["m-3"] != notification.LightRed {
		t.Errorf("expected m-3 red, got %s", lights["m-3"])
	}

	if res.PageInfo.Total != 3 || res.PageInfo.TotalPages != 1 {
		t.Errorf("unexpected page info: %+v", res.PageInfo)
	}
}

// TestQueryGetMemberList_Pagination tests page slicing and metadata.
func TestQueryGetMemberList_Pagination(t *testing.T) {
	var members []domainMember.Member
	for _, id := range []string{"m-1", "m-2", "m-3", "m-4", "m-5"} {
		members = append(members, standingMember(id, "Test", id, 0))
	}
	store := &mockMemberStore{members: members}

	res, err := QueryGetMemberList(context.Background(), GetMemberListQuery{
		Page: listutil.PageParams{Page: 2, PerPage: 2},
	}, GetMemberListDeps{
		MemberStore: store,
		Policy:      notification.DefaultPolicy(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Members) != 2 {
		t.Fatalf("expected 2 members on page 2, got %d", len(res.Members))
	}
	if res.Members[0].ID != "m-3" {
		t.Errorf("expected page 2 to start at m-3, got %s", res.Members[0].ID)
	}
	if res.PageInfo.TotalPages != 3 {
		t.Errorf("expected 3 total pages, got %d", res.PageInfo.TotalPages)
	}
}

// TestQueryGetMemberList_HistoryError tests that a failing history load
// surfaces as an error rather than an all-green page.
func TestQueryGetMemberList_HistoryError(t *testing.T) {
	store := &mockMemberStore{
		members:    []domainMember.Member{standingMember("m-1", "Sara", "Conti", 3)},
		historyErr: errors.New("disk I/O error"),
	}

	_, err := QueryGetMemberList(context.Background(), GetMemberListQuery{
		Page: listutil.PageParams{Page: 1, PerPage: 20},
	}, GetMemberListDeps{
		MemberStore: store,
		Policy:      notification.DefaultPolicy(),
	})
	if !errors.Is(err, store.historyErr) {
		t.Fatalf("expected the store error, got %v", err)
	}
}

// TestQueryGetMemberProfile_Standing tests the profile detail.
func TestQueryGetMemberProfile_Standing(t *testing.T) {
	store := &mockMemberStore{members: []domainMember.Member{
		standingMember("m-1", "Sara", "Conti", 2),
	}}

	res, err := QueryGetMemberProfile(context.Background(), GetMemberProfileQuery{MemberID: "m-1"}, GetMemberListDeps{
		MemberStore: store,
		Policy:      notification.DefaultPolicy(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Member.FullName() != "Sara Conti" {
		t.Errorf("unexpected member: %s", res.Member.FullName())
	}
	if res.Missed != 2 {
		t.Errorf("expected 2 missed bookings, got %d", res.Missed)
	}
	if res.TrafficLight != notification.LightOrange {
		t.Errorf("expected orange standing, got %s", res.TrafficLight)
	}
}

// TestQueryGetMemberProfile_NotFound tests the missing-member path.
func TestQueryGetMemberProfile_NotFound(t *testing.T) {
	store := &mockMemberStore{}
	_, err := QueryGetMemberProfile(context.Background(), GetMemberProfileQuery{MemberID: "missing"}, GetMemberListDeps{
		MemberStore: store,
		Policy:      notification.DefaultPolicy(),
	})
	if err == nil {
		t.Error("expected error for missing member")
	}
}
