package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"golang.org/x/crypto/bcrypt"

	"github.com/reparvservices/reparv-server-sub002/internal/notify"
	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/referral"
	"github.com/reparvservices/reparv-server-sub002/internal/store"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

type PartnerInput struct {
	FullName          string `form:"fullname" json:"fullname" validate:"required"`
	Contact           string `form:"contact" json:"contact" validate:"required"`
	Email             string `form:"email" json:"email" validate:"required,email"`
	ProjectPartnerID  string `form:"projectpartnerid" json:"projectpartnerid"`
	Address           string `form:"address" json:"address"`
	State             string `form:"state" json:"state"`
	City              string `form:"city" json:"city"`
	Pincode           string `form:"pincode" json:"pincode"`
	AdharNo           string `form:"adharno" json:"adharno"`
	PanNo             string `form:"panno" json:"panno"`
	ReraNo            string `form:"rerano" json:"rerano"`
	BankName          string `form:"bankname" json:"bankname"`
	AccountHolderName string `form:"accountholdername" json:"accountholdername"`
	AccountNumber     string `form:"accountnumber" json:"accountnumber"`
	IFSC              string `form:"ifsc" json:"ifsc"`
}

// PartnerPatch carries the editable partner fields. A nil field is left as
// stored.
type PartnerPatch struct {
	FullName          *string `form:"fullname" json:"fullname"`
	Contact           *string `form:"contact" json:"contact"`
	Email             *string `form:"email" json:"email" validate:"omitempty,email"`
	Address           *string `form:"address" json:"address"`
	State             *string `form:"state" json:"state"`
	City              *string `form:"city" json:"city"`
	Pincode           *string `form:"pincode" json:"pincode"`
	AdharNo           *string `form:"adharno" json:"adharno"`
	PanNo             *string `form:"panno" json:"panno"`
	ReraNo            *string `form:"rerano" json:"rerano"`
	BankName          *string `form:"bankname" json:"bankname"`
	AccountHolderName *string `form:"accountholdername" json:"accountholdername"`
	AccountNumber     *string `form:"accountnumber" json:"accountnumber"`
	IFSC              *string `form:"ifsc" json:"ifsc"`
}

func (p *PartnerPatch) columns() *store.Columns {
	cols := store.NewColumns()
	if p.FullName != nil {
		cols.SetString("fullname", *p.FullName)
	}
	if p.Contact != nil {
		cols.SetString("contact", *p.Contact)
	}
	if p.Email != nil {
		cols.SetString("email", *p.Email)
	}
	cols.SetPtr("address", p.Address).
		SetPtr("state", p.State).
		SetPtr("city", p.City).
		SetPtr("pincode", p.Pincode).
		SetPtr("adhar_no", p.AdharNo).
		SetPtr("pan_no", p.PanNo).
		SetPtr("rera_no", p.ReraNo).
		SetPtr("bank_name", p.BankName).
		SetPtr("account_holder_name", p.AccountHolderName).
		SetPtr("account_number", p.AccountNumber).
		SetPtr("ifsc", p.IFSC)
	return cols
}

type LoginInput struct {
	Username string `form:"username" json:"username" validate:"required"`
	Password string `form:"password" json:"password" validate:"required,min=6"`
}

type FollowUpInput struct {
	Status string `form:"status" json:"status" validate:"required"`
	Note   string `form:"followup" json:"followup"`
}

func (s *Service) partnerStore(role types.Role) (types.PartnerKind, PartnerStore, error) {
	kind, ok := types.KindOf(role)
	if !ok {
		return kind, nil, pipeline.Validationf("unknown partner role %q", role)
	}
	rows, ok := s.Partners[role]
	if !ok || rows == nil {
		return kind, nil, pipeline.Unexpected(fmt.Sprintf("no store configured for %s", role), nil)
	}
	return kind, rows, nil
}

// owner resolves the project partner a new scoped partner belongs to. Admins
// name it in the request; everyone else adds under their own tenant.
func partnerOwner(id types.Identity, kind types.PartnerKind, in *PartnerInput) (*string, error) {
	if !kind.Scoped {
		return nil, nil
	}
	if id.Role == types.AuthAdmin {
		return utils.NilIfBlank(in.ProjectPartnerID), nil
	}
	t, err := tenant(id)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// referralInsertAttempts bounds how often a referral code claimed by a
// concurrent insert is regenerated.
const referralInsertAttempts = 3

// insertWithReferral assigns a fresh referral code and inserts partner. The
// existence check and the insert are not atomic, so a unique violation on a
// code that is now taken draws a new code and tries again.
func (s *Service) insertWithReferral(ctx context.Context, rows PartnerStore, partner *types.Partner) error {
	for attempt := 1; ; attempt++ {
		code, err := s.Referrals.Generate(ctx, func(ctx context.Context, code string) (bool, error) {
			return rows.Exists(ctx, sq.Eq{"referral": code})
		})
		if err != nil {
			if errors.Is(err, referral.ErrExhausted) {
				return pipeline.Unexpected("failed to generate a unique referral code", err)
			}
			return err
		}
		partner.Referral = &code

		err = rows.Insert(ctx, partner)
		if err == nil || !isDuplicate(err) || attempt == referralInsertAttempts {
			return err
		}

		claimed, cerr := rows.Exists(ctx, sq.Eq{"referral": code})
		if cerr != nil || !claimed {
			return err
		}
		s.Logger.WithField("referral", code).WithField("attempt", attempt).Warn("referral code claimed concurrently, regenerating")
	}
}

// AddPartner creates a partner of role, uploads its KYC images, assigns a
// fresh referral code and seeds its onboarding follow-up.
func (s *Service) AddPartner(ctx context.Context, id types.Identity, role types.Role, in *PartnerInput, files Files) (*types.Partner, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	owner, err := partnerOwner(id, kind, in)
	if err != nil {
		return nil, err
	}

	partner := &types.Partner{
		ID:                newID(),
		ProjectPartnerID:  owner,
		FullName:          trimmed(in.FullName),
		Contact:           trimmed(in.Contact),
		Email:             trimmed(in.Email),
		Address:           utils.NilIfBlank(in.Address),
		State:             utils.NilIfBlank(in.State),
		City:              utils.NilIfBlank(in.City),
		Pincode:           utils.NilIfBlank(in.Pincode),
		AdharNo:           utils.NilIfBlank(in.AdharNo),
		PanNo:             utils.NilIfBlank(in.PanNo),
		BankName:          utils.NilIfBlank(in.BankName),
		AccountHolderName: utils.NilIfBlank(in.AccountHolderName),
		AccountNumber:     utils.NilIfBlank(in.AccountNumber),
		IFSC:              utils.NilIfBlank(in.IFSC),
		Status:            types.StatusActive,
		LoginStatus:       types.StatusInactive,
	}
	if kind.Rera {
		partner.ReraNo = utils.NilIfBlank(in.ReraNo)
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   string(role),
		Op:       pipeline.OpCreate,
		Validate: func() error { return s.check(in) },
		CheckDuplicate: func(ctx context.Context) error {
			taken, err := rows.Exists(ctx, sq.Or{
				sq.Eq{"contact": partner.Contact},
				sq.Eq{"email": partner.Email},
			})
			if err != nil {
				return err
			}
			if taken {
				return pipeline.Conflict(fmt.Sprintf("%s already exists with this contact or email", role))
			}
			return nil
		},
		Uploads: files.uploads(partnerSlots(kind)...),
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			partner.AdharImage = asset(assets, adharSlot.Column)
			partner.PanImage = asset(assets, panSlot.Column)
			partner.ReraImage = asset(assets, reraSlot.Column)
			partner.Touch(s.now())

			return s.insertWithReferral(ctx, rows, partner)
		},
		Dependents: func(ctx context.Context) error {
			followUp := &types.FollowUp{
				ID:        newID(),
				PartnerID: partner.ID,
				Role:      role,
				Status:    types.FollowUpStatusNew,
				Note:      "Newly Added " + string(role),
			}
			followUp.Touch(s.now())
			return s.FollowUps.Insert(ctx, followUp)
		},
		Revert: func(ctx context.Context) error {
			return rows.Delete(context.WithoutCancel(ctx), partner.ID)
		},
	})
	if err != nil {
		return nil, err
	}

	return format(s.Location, partner), nil
}

// loadPartner fetches a partner and hides rows outside the caller's tenant.
func (s *Service) loadPartner(ctx context.Context, id types.Identity, kind types.PartnerKind, rows PartnerStore, partnerID string) (*types.Partner, error) {
	partner, err := rows.Get(ctx, partnerID)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("%s not found", kind.Role))
	}
	if kind.Scoped && !visible(id, partner.ProjectPartnerID) {
		return nil, pipeline.NotFound(fmt.Sprintf("%s not found", kind.Role))
	}
	return partner, nil
}

func (s *Service) GetPartner(ctx context.Context, id types.Identity, role types.Role, partnerID string) (*types.Partner, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	partner, err := s.loadPartner(ctx, id, kind, rows, partnerID)
	if err != nil {
		return nil, err
	}
	return format(s.Location, partner), nil
}

// ListPartners returns partners of role newest first, each with its latest
// follow-up. Tenant-scoped callers only see their own partners.
func (s *Service) ListPartners(ctx context.Context, id types.Identity, role types.Role, activeOnly bool) ([]*types.PartnerListing, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	where := statusFilter(activeOnly)
	if kind.Scoped && id.Role != types.AuthAdmin {
		t, err := tenant(id)
		if err != nil {
			return nil, err
		}
		where["projectpartner_id"] = t
	}

	listing, err := rows.Listing(ctx, where)
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	return formatAll(s.Location, listing), nil
}

// EditPartner updates the supplied fields and replaces KYC images that came
// with new files. Replaced images are deleted once the row is written.
func (s *Service) EditPartner(ctx context.Context, id types.Identity, role types.Role, partnerID string, patch *PartnerPatch, files Files) (*types.Partner, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	current, err := s.loadPartner(ctx, id, kind, rows, partnerID)
	if err != nil {
		return nil, err
	}

	cols := patch.columns()
	if !kind.Rera {
		cols = withoutColumn(cols, "rera_no")
	}

	_, err = s.Runner.Run(ctx, &pipeline.Write{
		Entity:   string(role),
		Op:       pipeline.OpEdit,
		Validate: func() error { return s.check(patch) },
		Uploads:  files.uploads(partnerSlots(kind)...),
		Previous: map[string]*string{
			adharSlot.Column: current.AdharImage,
			panSlot.Column:   current.PanImage,
			reraSlot.Column:  current.ReraImage,
		},
		Persist: func(ctx context.Context, assets pipeline.Assets) error {
			return rows.Update(ctx, partnerID, cols.Merge(assets))
		},
	})
	if err != nil {
		return nil, err
	}

	return s.GetPartner(ctx, id, role, partnerID)
}

func (s *Service) TogglePartnerStatus(ctx context.Context, id types.Identity, role types.Role, partnerID string) (types.Status, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return "", err
	}

	if _, err := s.loadPartner(ctx, id, kind, rows, partnerID); err != nil {
		return "", err
	}

	value, err := toggle[types.Partner](ctx, rows, partnerID, store.StatusToggle, fmt.Sprintf("%s not found", role))
	return types.Status(value), err
}

// DeletePartner removes the partner, its follow-ups and its KYC images.
func (s *Service) DeletePartner(ctx context.Context, id types.Identity, role types.Role, partnerID string) error {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return err
	}

	partner, err := s.loadPartner(ctx, id, kind, rows, partnerID)
	if err != nil {
		return err
	}

	return s.Runner.Remove(ctx, string(role), func(ctx context.Context) error {
		if err := rows.Delete(ctx, partnerID); err != nil {
			return err
		}
		if err := s.FollowUps.DeleteForPartner(ctx, partnerID, role); err != nil {
			s.Logger.WithError(err).WithField("partner_id", partnerID).Warn("failed to delete partner follow-ups")
		}
		return nil
	}, partner.AdharImage, partner.PanImage, partner.ReraImage)
}

const (
	msgLoginAssigned       = "Login credentials assigned and emailed successfully"
	msgLoginAssignedNoMail = "Login credentials assigned, but the email could not be sent"
)

// AssignLogin stores hashed credentials, activates login and emails the
// plain credentials to the partner. A failed email does not undo the
// assignment; the returned message says so.
func (s *Service) AssignLogin(ctx context.Context, id types.Identity, role types.Role, partnerID string, in *LoginInput) (string, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return "", err
	}

	if err := s.check(in); err != nil {
		return "", err
	}

	partner, err := s.loadPartner(ctx, id, kind, rows, partnerID)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", pipeline.Unexpected("failed to hash password", err)
	}

	cols := store.NewColumns().
		Set("username", trimmed(in.Username)).
		Set("password", string(hash)).
		Set("loginstatus", types.StatusActive)
	if err := rows.Update(ctx, partnerID, cols); err != nil {
		return "", notFound(err, fmt.Sprintf("%s not found", role))
	}

	mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
	defer cancel()

	err = s.Mailer.SendCredentials(mailCtx, notify.Credentials{
		Name:     partner.FullName,
		Email:    partner.Email,
		Role:     role,
		Username: trimmed(in.Username),
		Password: in.Password,
	})
	if err != nil {
		s.Logger.WithError(err).WithField("partner_id", partnerID).Warn("credentials assigned without email")
		return msgLoginAssignedNoMail, nil
	}

	return msgLoginAssigned, nil
}

func (s *Service) AddFollowUp(ctx context.Context, id types.Identity, role types.Role, partnerID string, in *FollowUpInput) (*types.FollowUp, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	if err := s.check(in); err != nil {
		return nil, err
	}

	if _, err := s.loadPartner(ctx, id, kind, rows, partnerID); err != nil {
		return nil, err
	}

	followUp := &types.FollowUp{
		ID:        newID(),
		PartnerID: partnerID,
		Role:      role,
		Status:    trimmed(in.Status),
		Note:      trimmed(in.Note),
	}
	followUp.Touch(s.now())

	if err := s.FollowUps.Insert(ctx, followUp); err != nil {
		return nil, upstream(err, "failed to add follow-up")
	}

	return format(s.Location, followUp), nil
}

func (s *Service) FollowUpHistory(ctx context.Context, id types.Identity, role types.Role, partnerID string) ([]*types.FollowUp, error) {
	kind, rows, err := s.partnerStore(role)
	if err != nil {
		return nil, err
	}

	if _, err := s.loadPartner(ctx, id, kind, rows, partnerID); err != nil {
		return nil, err
	}

	history, err := s.FollowUps.History(ctx, partnerID, role)
	if err != nil {
		return nil, upstream(err, "Database error")
	}
	return formatAll(s.Location, history), nil
}

// asset returns the fresh value for column, or nil when the slot received
// no file.
func asset(assets pipeline.Assets, column string) *string {
	if v, ok := assets[column]; ok {
		return &v
	}
	return nil
}

func withoutColumn(cols *store.Columns, column string) *store.Columns {
	if !cols.Has(column) {
		return cols
	}
	out := store.NewColumns()
	for name, value := range cols.Map() {
		if name != column {
			out.Set(name, value)
		}
	}
	return out
}
