package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"summitly-data/internal/analytics"
	"summitly-data/internal/repository"
)

func newLeadServiceForTest(t *testing.T) (LeadService, *fakePublisher) {
	t.Helper()
	publisher := &fakePublisher{}
	return NewLeadService(repository.NewMemoryLeadsRepo(), publisher, zap.NewNop()), publisher
}

func TestCreateLead_RequiresName(t *testing.T) {
	svc, _ := newLeadServiceForTest(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Email: "buyer@example.com",
	})

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateLead_RequiresEmailOrPhone(t *testing.T) {
	svc, _ := newLeadServiceForTest(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Name: "Jordan Lee",
	})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	// 只有电话也可以
	resp, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Name:  "Jordan Lee",
		Phone: "416-555-0199",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.LeadID)
}

func TestCreateLead_RejectsInvalidEmail(t *testing.T) {
	svc, _ := newLeadServiceForTest(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Name:  "Jordan Lee",
		Email: "not-an-email",
	})

	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCreateLead_PublishesLeadEvent(t *testing.T) {
	svc, publisher := newLeadServiceForTest(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		ProjectID: "11111111-1111-1111-1111-111111111111",
		Name:      "Jordan Lee",
		Email:     "buyer@example.com",
		Source:    "Landing-Page",
	})
	require.NoError(t, err)

	events := publisher.published()
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventLead, events[0].Event)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", events[0].ProjectID)
}

func TestCreateLead_NoEventWithoutProject(t *testing.T) {
	svc, publisher := newLeadServiceForTest(t)

	// 未关联项目的Lead不计入项目热度
	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Name:  "Jordan Lee",
		Email: "buyer@example.com",
	})
	require.NoError(t, err)

	assert.Empty(t, publisher.published())
}

func TestListLeads_Filters(t *testing.T) {
	svc, _ := newLeadServiceForTest(t)

	projectID := "11111111-1111-1111-1111-111111111111"
	seeds := []CreateLeadRequest{
		{ProjectID: projectID, Name: "A", Email: "a@example.com", Source: "website"},
		{ProjectID: projectID, Name: "B", Email: "b@example.com", Source: "referral"},
		{Name: "C", Email: "c@example.com"},
	}
	for _, seed := range seeds {
		_, err := svc.CreateLead(context.Background(), seed)
		require.NoError(t, err)
	}

	byProject, err := svc.ListLeads(context.Background(), ListLeadsRequest{ProjectID: projectID})
	require.NoError(t, err)
	assert.Equal(t, 2, byProject.Total)

	bySource, err := svc.ListLeads(context.Background(), ListLeadsRequest{Source: "referral"})
	require.NoError(t, err)
	require.Equal(t, 1, bySource.Total)
	assert.Equal(t, "B", bySource.Items[0].Name)

	all, err := svc.ListLeads(context.Background(), ListLeadsRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
}

func TestCreateLead_DefaultSource(t *testing.T) {
	svc, _ := newLeadServiceForTest(t)

	_, err := svc.CreateLead(context.Background(), CreateLeadRequest{
		Name:  "Jordan Lee",
		Email: "buyer@example.com",
	})
	require.NoError(t, err)

	// 未指定来源时按 website 记录
	list, err := svc.ListLeads(context.Background(), ListLeadsRequest{Source: "website"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
}
