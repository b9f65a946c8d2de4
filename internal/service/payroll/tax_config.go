package payroll

import (
	"context"

	"github.com/staffpay/staffpay-backend-go/internal/domain/payroll"
	"github.com/staffpay/staffpay-backend-go/internal/pkg/sse"
)

const EventTaxConfigUpdated = "payroll.tax_config.updated"

func (s *PayrollServiceImpl) GetTaxConfig(ctx context.Context) (payroll.TaxConfigResponse, error) {
	cfg, err := s.TaxConfigs.Get(ctx)
	if err != nil {
		return payroll.TaxConfigResponse{}, err
	}
	return payroll.NewTaxConfigResponse(cfg), nil
}

// UpdateTaxConfig replaces the tax tables. Inconsistent brackets are rejected
// as a configuration error.
func (s *PayrollServiceImpl) UpdateTaxConfig(ctx context.Context, req payroll.TaxConfigRequest) (payroll.TaxConfigResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.TaxConfigResponse{}, err
	}
	cfg := req.ToEntity()
	if err := cfg.Validate(); err != nil {
		return payroll.TaxConfigResponse{}, err
	}

	saved, err := s.TaxConfigs.Save(ctx, cfg)
	if err != nil {
		return payroll.TaxConfigResponse{}, err
	}

	resp := payroll.NewTaxConfigResponse(saved)
	s.publish(sse.TopicPayroll, EventTaxConfigUpdated, map[string]int{"taxYear": saved.TaxYear})
	return resp, nil
}
