package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/reparvservices/reparv-server-sub002/internal/importer"
	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/storage"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

const enquiryStatusNew = "New"

type EnquiryInput struct {
	PropertyID         string `form:"propertyid" json:"propertyid"`
	TerritoryPartnerID string `form:"territorypartnerid" json:"territorypartnerid"`
	CustomerName       string `form:"customer" json:"customer" validate:"required"`
	Contact            string `form:"contact" json:"contact" validate:"required"`
	Email              string `form:"email" json:"email" validate:"omitempty,email"`
	Location           string `form:"location" json:"location"`
	Category           string `form:"category" json:"category"`
	MinBudget          int64  `form:"minbudget" json:"minbudget" validate:"gte=0"`
	MaxBudget          int64  `form:"maxbudget" json:"maxbudget" validate:"gte=0"`
	Message            string `form:"message" json:"message"`
}

func (s *Service) AddEnquiry(ctx context.Context, id types.Identity, in *EnquiryInput) (*types.Enquirer, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	owner, err := tenant(id)
	if err != nil {
		return nil, err
	}

	e := &types.Enquirer{
		ID:                 newID(),
		ProjectPartnerID:   owner,
		PropertyID:         utils.NilIfBlank(in.PropertyID),
		TerritoryPartnerID: utils.NilIfBlank(in.TerritoryPartnerID),
		CustomerName:       trimmed(in.CustomerName),
		Contact:            trimmed(in.Contact),
		Email:              utils.NilIfBlank(in.Email),
		Location:           utils.NilIfBlank(in.Location),
		Category:           utils.NilIfBlank(in.Category),
		MinBudget:          in.MinBudget,
		MaxBudget:          in.MaxBudget,
		Message:            utils.NilIfBlank(in.Message),
		Source:             types.SourceDirect,
		Status:             enquiryStatusNew,
	}
	e.Touch(s.now())

	if err := s.Enquiries.Insert(ctx, e); err != nil {
		return nil, upstream(err, "failed to add enquiry")
	}
	return format(s.Location, e), nil
}

// ImportEnquiries bulk-adds enquiries from a CSV or XLSX sheet. Rows without
// a customer name or contact are skipped; a sheet with no usable rows is
// rejected.
func (s *Service) ImportEnquiries(ctx context.Context, id types.Identity, file *storage.File) (int, error) {
	owner, err := tenant(id)
	if err != nil {
		return 0, err
	}
	if file == nil || len(file.Data) == 0 {
		return 0, pipeline.Validation("File is required")
	}

	rows, err := importer.Parse(file.Filename, file.Data)
	if err != nil {
		return 0, &pipeline.Error{Kind: pipeline.KindValidation, Message: err.Error(), Err: err}
	}

	now := s.now()
	enquirers := make([]*types.Enquirer, 0, len(rows))
	for _, row := range rows {
		name := row.Get("customer", "customer_name", "name")
		contact := row.Get("contact", "contact_no", "phone", "mobile")
		if name == "" || contact == "" {
			continue
		}

		e := &types.Enquirer{
			ID:               newID(),
			ProjectPartnerID: owner,
			CustomerName:     name,
			Contact:          contact,
			Email:            utils.NilIfBlank(row.Get("email")),
			Location:         utils.NilIfBlank(row.Get("location", "city")),
			Category:         utils.NilIfBlank(row.Get("category", "property_category")),
			MinBudget:        parseAmount(row.Get("min_budget", "minbudget")),
			MaxBudget:        parseAmount(row.Get("max_budget", "maxbudget")),
			Message:          utils.NilIfBlank(row.Get("message", "remark")),
			Source:           types.SourceCSVFile,
			Status:           enquiryStatusNew,
		}
		e.Touch(now)
		enquirers = append(enquirers, e)
	}

	if len(enquirers) == 0 {
		return 0, pipeline.Validation("No valid enquiries found in file")
	}

	if err := s.Enquiries.InsertMany(ctx, enquirers); err != nil {
		return 0, upstream(err, "failed to import enquiries")
	}

	s.Logger.WithField("count", len(enquirers)).WithField("projectpartner_id", owner).Info("enquiries imported")
	return len(enquirers), nil
}

// parseAmount reads a budget cell, ignoring thousands separators. Anything
// unreadable or out of int64 range counts as 0.
func parseAmount(v string) int64 {
	v = strings.NewReplacer(",", "", " ", "").Replace(v)
	if v == "" {
		return 0
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || n < 0 || n >= math.MaxInt64 {
		return 0
	}
	return int64(n)
}

func (s *Service) ListEnquiries(ctx context.Context, id types.Identity) ([]*types.Enquirer, error) {
	owner, err := tenant(id)
	if err != nil {
		return nil, err
	}
	return list[types.Enquirer](ctx, s, s.Enquiries, sq.Eq{"projectpartner_id": owner})
}

func (s *Service) loadEnquirer(ctx context.Context, id types.Identity, enquirerID string) (*types.Enquirer, error) {
	e, err := s.Enquiries.Get(ctx, enquirerID)
	if err != nil {
		return nil, notFound(err, "Enquiry not found")
	}
	if !visible(id, &e.ProjectPartnerID) {
		return nil, pipeline.NotFound("Enquiry not found")
	}
	return e, nil
}

// Customers lists the tenant's enquirers that paid a token.
func (s *Service) Customers(ctx context.Context, id types.Identity) ([]*types.CustomerRow, error) {
	owner, err := tenant(id)
	if err != nil {
		return nil, err
	}

	rows, err := s.Enquiries.Customers(ctx, owner)
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	return formatAll(s.Location, rows), nil
}

type PropertyFollowUpInput struct {
	Status      string `form:"status" json:"status" validate:"required"`
	Note        string `form:"followup" json:"followup"`
	TokenAmount int64  `form:"tokenamount" json:"tokenamount" validate:"gte=0"`
}

// AddPropertyFollowUp records a follow-up on an enquiry and moves the enquiry
// to the follow-up's status. A Token follow-up turns the enquirer into a
// customer.
func (s *Service) AddPropertyFollowUp(ctx context.Context, id types.Identity, enquirerID string, in *PropertyFollowUpInput) (*types.PropertyFollowUp, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, err := s.loadEnquirer(ctx, id, enquirerID); err != nil {
		return nil, err
	}

	status := trimmed(in.Status)
	if strings.EqualFold(status, types.StatusToken) {
		status = types.StatusToken
		if in.TokenAmount <= 0 {
			return nil, pipeline.Validation("Token amount is required")
		}
	}

	f := &types.PropertyFollowUp{
		ID:          newID(),
		EnquirerID:  enquirerID,
		Status:      status,
		Note:        trimmed(in.Note),
		TokenAmount: in.TokenAmount,
	}
	f.Touch(s.now())

	if err := s.PropertyFollowUps.Insert(ctx, f); err != nil {
		return nil, upstream(err, "failed to add follow-up")
	}

	if err := s.Enquiries.Update(ctx, enquirerID, store.NewColumns().Set("status", status)); err != nil {
		return nil, upstream(err, "failed to update enquiry status")
	}

	return format(s.Location, f), nil
}

func (s *Service) ListPropertyFollowUps(ctx context.Context, id types.Identity, enquirerID string) ([]*types.PropertyFollowUp, error) {
	if _, err := s.loadEnquirer(ctx, id, enquirerID); err != nil {
		return nil, err
	}
	return list(ctx, s, s.PropertyFollowUps, sq.Eq{"enquirer_id": enquirerID})
}

type PaymentInput struct {
	PaymentType string `form:"paymentType" json:"paymentType" validate:"required"`
	Amount      int64  `form:"amount" json:"amount" validate:"gt=0"`
	Remark      string `form:"remark" json:"remark"`
}

func (s *Service) AddPayment(ctx context.Context, id types.Identity, enquirerID string, in *PaymentInput, files Files) (*types.CustomerPayment, error) {
	if _, err := s.loadEnquirer(ctx, id, enquirerID); err != nil {
		return nil, err
	}

	payment := &types.CustomerPayment{
		ID:          newID(),
		EnquirerID:  enquirerID,
		PaymentType: trimmed(in.PaymentType),
		Amount:      in.Amount,
		Remark:      utils.NilIfBlank(in.Remark),
	}

	_, err := s.Runner.Run(ctx, &pipeline.Write{
		Entity:   "customer_payment",
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		Uploads:  files.uploads(paymentImageSlot),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			payment.PaymentImage = asset(assets, paymentImageSlot.Column)
			payment.Touch(s.now())
			return s.Payments.Insert(ctx, payment)
		},
	})
	if err != nil {
		return nil, err
	}
	return format(s.Location, payment), nil
}

func (s *Service) ListPayments(ctx context.Context, id types.Identity, enquirerID string) ([]*types.CustomerPayment, error) {
	if _, err := s.loadEnquirer(ctx, id, enquirerID); err != nil {
		return nil, err
	}
	return list(ctx, s, s.Payments, sq.Eq{"enquirer_id": enquirerID})
}

func (s *Service) DeletePayment(ctx context.Context, id types.Identity, paymentID string) error {
	payment, err := s.Payments.Get(ctx, paymentID)
	if err != nil {
		return notFound(err, "Payment not found")
	}
	if _, err := s.loadEnquirer(ctx, id, payment.EnquirerID); err != nil {
		return pipeline.NotFound("Payment not found")
	}
	return s.Runner.Remove(ctx, "customer_payment", deleteRow(s.Payments, paymentID), payment.PaymentImage)
}
