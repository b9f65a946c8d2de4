package staff

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStaffRepo struct {
	staff.StaffRepository
	created []staff.Staff
}

func (m *memStaffRepo) Create(_ context.Context, s staff.Staff) (staff.Staff, error) {
	s.ID = "s-1"
	m.created = append(m.created, s)
	return s, nil
}

type memZoneRepo struct {
	staff.ZoneRepository
	zones map[string]staff.Zone
}

func (m *memZoneRepo) GetByID(_ context.Context, id string) (staff.Zone, error) {
	z, ok := m.zones[id]
	if !ok {
		return staff.Zone{}, staff.ErrZoneNotFound
	}
	return z, nil
}

type memPayGroupRepo struct {
	staff.PayGroupRepository
	groups map[string]staff.PayGroup
}

func (m *memPayGroupRepo) GetByID(_ context.Context, id string) (staff.PayGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return staff.PayGroup{}, staff.ErrPayGroupNotFound
	}
	return g, nil
}

func (m *memPayGroupRepo) Create(_ context.Context, g staff.PayGroup) (staff.PayGroup, error) {
	g.ID = "g-new"
	return g, nil
}

func newTestService() (staff.StaffService, *memStaffRepo) {
	staffRepo := &memStaffRepo{}
	svc := NewStaffService(
		staffRepo,
		&memZoneRepo{zones: map[string]staff.Zone{"z1": {ID: "z1", Name: "North"}}},
		&memPayGroupRepo{groups: map[string]staff.PayGroup{"g1": {ID: "g1", Name: "Cashiers"}}},
	)
	return svc, staffRepo
}

// ===== STAFF SERVICE TESTS =====

func TestStaffService_CreateStaff_GroupedClearsIndividualRates(t *testing.T) {
	svc, repo := newTestService()
	zone, group := "z1", "g1"

	resp, err := svc.CreateStaff(context.Background(), staff.CreateStaffRequest{
		Name:       "Abe",
		ZoneID:     &zone,
		PayGroupID: &group,
		HourlyRate: decimal.NewFromInt(120),
	})

	require.NoError(t, err)
	assert.Equal(t, "s-1", resp.ID)
	assert.Equal(t, staff.RateSourceGrouped, resp.RateSource)
	require.Len(t, repo.created, 1)
	assert.True(t, repo.created[0].Rates.HourlyRate.IsZero())
	assert.True(t, repo.created[0].PayeEnabled)
}

func TestStaffService_CreateStaff_UnknownReferences(t *testing.T) {
	svc, repo := newTestService()
	zone, group := "z-missing", "g-missing"

	_, err := svc.CreateStaff(context.Background(), staff.CreateStaffRequest{
		Name:       "Abe",
		ZoneID:     &zone,
		PayGroupID: &group,
	})

	var verr validator.ValidationErrors
	require.True(t, errors.As(err, &verr))
	fields := verr.ToMap()
	assert.Contains(t, fields, "zoneId")
	assert.Contains(t, fields, "payGroupId")
	assert.Empty(t, repo.created)
}

func TestStaffService_CreatePayGroup_Defaults(t *testing.T) {
	svc, _ := newTestService()

	resp, err := svc.CreatePayGroup(context.Background(), staff.PayGroupRequest{
		Name:       "Weekend",
		HourlyRate: decimal.NewFromInt(90),
	})

	require.NoError(t, err)
	assert.True(t, staff.DefaultOvertimeRate.Equal(resp.OvertimeRate))
	assert.True(t, staff.DefaultHoursPerDay.Equal(resp.HoursPerDay))
}
