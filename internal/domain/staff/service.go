package staff

import "context"

type StaffService interface {
	CreateStaff(ctx context.Context, req CreateStaffRequest) (StaffResponse, error)
	GetStaff(ctx context.Context, id string) (StaffResponse, error)
	ListStaff(ctx context.Context, filter StaffFilter) ([]StaffResponse, error)
	UpdateStaff(ctx context.Context, req UpdateStaffRequest) (StaffResponse, error)
	DeleteStaff(ctx context.Context, id string) error

	CreateZone(ctx context.Context, req ZoneRequest) (ZoneResponse, error)
	GetZone(ctx context.Context, id string) (ZoneResponse, error)
	ListZones(ctx context.Context) ([]ZoneResponse, error)
	UpdateZone(ctx context.Context, id string, req ZoneRequest) (ZoneResponse, error)
	DeleteZone(ctx context.Context, id string) error

	CreatePayGroup(ctx context.Context, req PayGroupRequest) (PayGroupResponse, error)
	GetPayGroup(ctx context.Context, id string) (PayGroupResponse, error)
	ListPayGroups(ctx context.Context) ([]PayGroupResponse, error)
	UpdatePayGroup(ctx context.Context, id string, req PayGroupRequest) (PayGroupResponse, error)
	DeletePayGroup(ctx context.Context, id string) error
}
