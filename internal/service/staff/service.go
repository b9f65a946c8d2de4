package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/staffpay/staffpay-backend-go/internal/domain/staff"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/validator"
)

type staffServiceImpl struct {
	staffRepo    staff.StaffRepository
	zoneRepo     staff.ZoneRepository
	payGroupRepo staff.PayGroupRepository
}

func NewStaffService(
	staffRepo staff.StaffRepository,
	zoneRepo staff.ZoneRepository,
	payGroupRepo staff.PayGroupRepository,
) staff.StaffService {
	return &staffServiceImpl{
		staffRepo:    staffRepo,
		zoneRepo:     zoneRepo,
		payGroupRepo: payGroupRepo,
	}
}

// ==================== STAFF OPERATIONS ====================

func (s *staffServiceImpl) CreateStaff(ctx context.Context, req staff.CreateStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}

	entity := req.ToEntity()
	if err := s.checkReferences(ctx, entity); err != nil {
		return staff.StaffResponse{}, err
	}

	created, err := s.staffRepo.Create(ctx, entity)
	if err != nil {
		return staff.StaffResponse{}, fmt.Errorf("failed to create staff: %w", err)
	}
	return staff.NewStaffResponse(created), nil
}

func (s *staffServiceImpl) GetStaff(ctx context.Context, id string) (staff.StaffResponse, error) {
	entity, err := s.staffRepo.GetByID(ctx, id)
	if err != nil {
		return staff.StaffResponse{}, err
	}
	return staff.NewStaffResponse(entity), nil
}

func (s *staffServiceImpl) ListStaff(ctx context.Context, filter staff.StaffFilter) ([]staff.StaffResponse, error) {
	members, err := s.staffRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	resp := make([]staff.StaffResponse, 0, len(members))
	for _, m := range members {
		resp = append(resp, staff.NewStaffResponse(m))
	}
	return resp, nil
}

func (s *staffServiceImpl) UpdateStaff(ctx context.Context, req staff.UpdateStaffRequest) (staff.StaffResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.StaffResponse{}, err
	}

	existing, err := s.staffRepo.GetByID(ctx, req.ID)
	if err != nil {
		return staff.StaffResponse{}, err
	}

	entity := req.ToEntity()
	entity.ID = existing.ID
	entity.CreatedAt = existing.CreatedAt
	if err := s.checkReferences(ctx, entity); err != nil {
		return staff.StaffResponse{}, err
	}

	updated, err := s.staffRepo.Update(ctx, entity)
	if err != nil {
		return staff.StaffResponse{}, fmt.Errorf("failed to update staff: %w", err)
	}
	return staff.NewStaffResponse(updated), nil
}

func (s *staffServiceImpl) DeleteStaff(ctx context.Context, id string) error {
	return s.staffRepo.Delete(ctx, id)
}

// checkReferences rejects zone and pay group ids that do not exist.
func (s *staffServiceImpl) checkReferences(ctx context.Context, entity staff.Staff) error {
	var errs validator.ValidationErrors

	if entity.ZoneID != nil {
		if _, err := s.zoneRepo.GetByID(ctx, *entity.ZoneID); err != nil {
			if !errors.Is(err, staff.ErrZoneNotFound) {
				return err
			}
			errs.Add("zoneId", "unknown zone")
		}
	}
	if entity.PayGroupID != nil {
		if _, err := s.payGroupRepo.GetByID(ctx, *entity.PayGroupID); err != nil {
			if !errors.Is(err, staff.ErrPayGroupNotFound) {
				return err
			}
			errs.Add("payGroupId", "unknown pay group")
		}
	}

	return errs.Err()
}

// ==================== ZONE OPERATIONS ====================

func (s *staffServiceImpl) CreateZone(ctx context.Context, req staff.ZoneRequest) (staff.ZoneResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.ZoneResponse{}, err
	}

	created, err := s.zoneRepo.Create(ctx, staff.Zone{Name: req.Name})
	if err != nil {
		return staff.ZoneResponse{}, err
	}
	return staff.NewZoneResponse(created), nil
}

func (s *staffServiceImpl) GetZone(ctx context.Context, id string) (staff.ZoneResponse, error) {
	z, err := s.zoneRepo.GetByID(ctx, id)
	if err != nil {
		return staff.ZoneResponse{}, err
	}
	return staff.NewZoneResponse(z), nil
}

func (s *staffServiceImpl) ListZones(ctx context.Context) ([]staff.ZoneResponse, error) {
	zones, err := s.zoneRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]staff.ZoneResponse, 0, len(zones))
	for _, z := range zones {
		resp = append(resp, staff.NewZoneResponse(z))
	}
	return resp, nil
}

func (s *staffServiceImpl) UpdateZone(ctx context.Context, id string, req staff.ZoneRequest) (staff.ZoneResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.ZoneResponse{}, err
	}

	updated, err := s.zoneRepo.Update(ctx, staff.Zone{ID: id, Name: req.Name})
	if err != nil {
		return staff.ZoneResponse{}, err
	}
	return staff.NewZoneResponse(updated), nil
}

// DeleteZone removes a zone. Its staff become unassigned.
func (s *staffServiceImpl) DeleteZone(ctx context.Context, id string) error {
	return s.zoneRepo.Delete(ctx, id)
}

// ==================== PAY GROUP OPERATIONS ====================

func (s *staffServiceImpl) CreatePayGroup(ctx context.Context, req staff.PayGroupRequest) (staff.PayGroupResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.PayGroupResponse{}, err
	}

	created, err := s.payGroupRepo.Create(ctx, req.ToEntity())
	if err != nil {
		return staff.PayGroupResponse{}, err
	}
	return staff.NewPayGroupResponse(created), nil
}

func (s *staffServiceImpl) GetPayGroup(ctx context.Context, id string) (staff.PayGroupResponse, error) {
	g, err := s.payGroupRepo.GetByID(ctx, id)
	if err != nil {
		return staff.PayGroupResponse{}, err
	}
	return staff.NewPayGroupResponse(g), nil
}

func (s *staffServiceImpl) ListPayGroups(ctx context.Context) ([]staff.PayGroupResponse, error) {
	groups, err := s.payGroupRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]staff.PayGroupResponse, 0, len(groups))
	for _, g := range groups {
		resp = append(resp, staff.NewPayGroupResponse(g))
	}
	return resp, nil
}

func (s *staffServiceImpl) UpdatePayGroup(ctx context.Context, id string, req staff.PayGroupRequest) (staff.PayGroupResponse, error) {
	if err := req.Validate(); err != nil {
		return staff.PayGroupResponse{}, err
	}

	entity := req.ToEntity()
	entity.ID = id
	updated, err := s.payGroupRepo.Update(ctx, entity)
	if err != nil {
		return staff.PayGroupResponse{}, err
	}
	return staff.NewPayGroupResponse(updated), nil
}

// DeletePayGroup fails with ErrPayGroupInUse while staff still reference it.
func (s *staffServiceImpl) DeletePayGroup(ctx context.Context, id string) error {
	return s.payGroupRepo.Delete(ctx, id)
}
