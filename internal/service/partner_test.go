package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/reparvservices/reparv-server-sub002/internal/pipeline"
	"github.com/reparvservices/reparv-server-sub002/internal/utils"
	"github.com/reparvservices/reparv-server-sub002/pkg/types"
)

func guestInput(contact, email string) *PartnerInput {
	return &PartnerInput{FullName: "Asha Patil", Contact: contact, Email: email}
}

func TestAddPartnerWithoutFiles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "asha@example.com"), Files{})
	require.NoError(t, err)

	assert.Nil(t, p.AdharImage)
	assert.Nil(t, p.PanImage)
	assert.Nil(t, p.ReraImage)
	assert.Equal(t, types.StatusActive, p.Status)
	require.NotNil(t, p.Referral)
	assert.True(t, strings.HasPrefix(*p.Referral, "REF-"))
	assert.Len(t, *p.Referral, len("REF-")+6)
	assert.Equal(t, "05 Mar 2025 | 10:37 AM", p.Created)
	assert.Equal(t, 0, f.blobs.Uploads())

	history, err := f.followUps.History(ctx, p.ID, types.RoleGuestUser)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, types.FollowUpStatusNew, history[0].Status)
	assert.Equal(t, "Newly Added Guest User", history[0].Note)
}

func TestAddPartnerUploadsKYC(t *testing.T) {
	f := newFixture(t)

	in := guestInput("9876543210", "tp@example.com")
	files := filesOf(upload("adharImage", "a.png"), upload("panImage", "p.png"), upload("reraImage", "r.png"))

	p, err := f.svc.AddPartner(context.Background(), tenantA, types.RoleTerritoryPartner, in, files)
	require.NoError(t, err)

	require.NotNil(t, p.AdharImage)
	require.NotNil(t, p.PanImage)
	require.NotNil(t, p.ReraImage)
	assert.True(t, f.blobs.Has(*p.AdharImage))
	require.NotNil(t, p.ProjectPartnerID)
	assert.Equal(t, "pp-a", *p.ProjectPartnerID)
}

func TestAddPartnerIgnoresReraForNonReraRoles(t *testing.T) {
	f := newFixture(t)

	in := guestInput("9876543210", "sp@example.com")
	in.ReraNo = "RERA-1"
	p, err := f.svc.AddPartner(context.Background(), tenantA, types.RoleSalesPerson, in, filesOf(upload("reraImage", "r.png")))
	require.NoError(t, err)

	assert.Nil(t, p.ReraNo)
	assert.Nil(t, p.ReraImage)
	assert.Equal(t, 0, f.blobs.Uploads())
}

func TestAddPartnerDuplicateContact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "one@example.com"), Files{})
	require.NoError(t, err)

	_, err = f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "two@example.com"), filesOf(upload("adharImage", "a.png")))
	require.Error(t, err)

	assert.Equal(t, pipeline.KindConflict, kindOf(t, err))
	assert.Equal(t, 409, pipeline.KindOf(err).HTTPStatus())
	assert.Equal(t, 1, f.partners[types.RoleGuestUser].Len())
	assert.Equal(t, 0, f.blobs.Uploads())
}

func TestAddPartnerMissingFields(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddPartner(context.Background(), admin, types.RoleGuestUser, &PartnerInput{FullName: "Asha"}, Files{})
	require.Error(t, err)

	var perr *pipeline.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, pipeline.KindValidation, perr.Kind)
	assert.Equal(t, "All Fields are required", perr.Message)
	assert.Contains(t, perr.Fields, "Contact")
}

func TestAddPartnerUnknownRole(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.AddPartner(context.Background(), admin, types.Role("Broker"), guestInput("1", "b@example.com"), Files{})
	assert.Equal(t, pipeline.KindValidation, kindOf(t, err))
}

func TestAddPartnerRetriesReferralCollision(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.Referrals.WithDraw(func(string, int) (string, error) { return "AAAAAA", nil })
	first, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("1111111111", "a@example.com"), Files{})
	require.NoError(t, err)
	assert.Equal(t, "REF-AAAAAA", *first.Referral)

	draws := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	calls := 0
	f.svc.Referrals.WithDraw(func(string, int) (string, error) {
		code := draws[calls]
		calls++
		return code, nil
	})

	second, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("2222222222", "b@example.com"), Files{})
	require.NoError(t, err)

	assert.Equal(t, "REF-BBBBBB", *second.Referral)
	assert.Equal(t, 3, calls)
}

func TestAddPartnerRetriesReferralClaimedConcurrently(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guests := f.partners[types.RoleGuestUser]

	guests.beforeInsert = func() {
		rival := &types.Partner{
			ID:       "rival",
			FullName: "Rival",
			Contact:  "3333333333",
			Email:    "rival@example.com",
			Referral: utils.StringPtr("REF-AAAAAA"),
			Status:   types.StatusActive,
		}
		require.NoError(t, guests.MemTable.Insert(ctx, rival))
	}

	draws := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	calls := 0
	f.svc.Referrals.WithDraw(func(string, int) (string, error) {
		code := draws[calls]
		calls++
		return code, nil
	})

	p, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("1111111111", "a@example.com"), Files{})
	require.NoError(t, err)

	assert.Equal(t, "REF-BBBBBB", *p.Referral)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, guests.Len())

	var retried bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["referral"] == "REF-AAAAAA" {
			retried = true
		}
	}
	assert.True(t, retried)
}

func TestAddPartnerContactRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	guests := f.partners[types.RoleGuestUser]

	guests.beforeInsert = func() {
		rival := &types.Partner{ID: "rival", FullName: "Rival", Contact: "1111111111", Email: "rival@example.com", Status: types.StatusActive}
		require.NoError(t, guests.MemTable.Insert(ctx, rival))
	}

	_, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("1111111111", "a@example.com"), Files{})
	require.Error(t, err)

	assert.Equal(t, pipeline.KindConflict, kindOf(t, err))
	assert.Equal(t, 1, guests.Len())
}

func TestAddPartnerRevertsWhenSeedFollowUpFails(t *testing.T) {
	f := newFixture(t)

	f.followUps.FailNext(errors.New("connection reset"))
	_, err := f.svc.AddPartner(context.Background(), admin, types.RoleProjectPartner, guestInput("9876543210", "pp@example.com"), filesOf(upload("adharImage", "a.png")))
	require.Error(t, err)

	assert.Equal(t, pipeline.KindUpstream, kindOf(t, err))
	assert.Equal(t, 0, f.partners[types.RoleProjectPartner].Len())
	assert.Equal(t, 0, f.blobs.Len(), "fresh upload should be compensated")
}

func TestPartnerTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, tenantA, types.RoleSalesPerson, guestInput("9876543210", "sp@example.com"), Files{})
	require.NoError(t, err)

	_, err = f.svc.GetPartner(ctx, tenantB, types.RoleSalesPerson, p.ID)
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))

	_, err = f.svc.TogglePartnerStatus(ctx, tenantB, types.RoleSalesPerson, p.ID)
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))

	listB, err := f.svc.ListPartners(ctx, tenantB, types.RoleSalesPerson, false)
	require.NoError(t, err)
	assert.Empty(t, listB)

	listA, err := f.svc.ListPartners(ctx, tenantA, types.RoleSalesPerson, false)
	require.NoError(t, err)
	assert.Len(t, listA, 1)

	all, err := f.svc.ListPartners(ctx, admin, types.RoleSalesPerson, false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestListPartnersCarriesLatestFollowUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "g@example.com"), Files{})
	require.NoError(t, err)

	_, err = f.svc.AddFollowUp(ctx, admin, types.RoleGuestUser, p.ID, &FollowUpInput{Status: "Called", Note: "call back monday"})
	require.NoError(t, err)

	rows, err := f.svc.ListPartners(ctx, admin, types.RoleGuestUser, false)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].FollowUpStatus)
	assert.Equal(t, "Called", *rows[0].FollowUpStatus)
	assert.Equal(t, "call back monday", *rows[0].FollowUpNote)
	assert.Equal(t, "05 Mar 2025 | 10:37 AM", rows[0].FollowUpTime)

	history, err := f.svc.FollowUpHistory(ctx, admin, types.RoleGuestUser, p.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestTogglePartnerStatusIsSymmetric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleEmployee, guestInput("9876543210", "e@example.com"), Files{})
	require.NoError(t, err)

	v, err := f.svc.TogglePartnerStatus(ctx, admin, types.RoleEmployee, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInactive, v)

	v, err = f.svc.TogglePartnerStatus(ctx, admin, types.RoleEmployee, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, v)

	_, err = f.svc.TogglePartnerStatus(ctx, admin, types.RoleEmployee, "missing")
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))
}

func TestEditPartnerReplacesOnlyNewSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleProjectPartner, guestInput("9876543210", "pp@example.com"),
		filesOf(upload("adharImage", "a1.png"), upload("panImage", "p1.png")))
	require.NoError(t, err)
	oldAdhar, oldPan := *p.AdharImage, *p.PanImage

	city := "Nagpur"
	updated, err := f.svc.EditPartner(ctx, admin, types.RoleProjectPartner, p.ID, &PartnerPatch{City: &city}, filesOf(upload("adharImage", "a2.png")))
	require.NoError(t, err)

	require.NotNil(t, updated.City)
	assert.Equal(t, "Nagpur", *updated.City)
	assert.NotEqual(t, oldAdhar, *updated.AdharImage)
	assert.Equal(t, oldPan, *updated.PanImage)
	assert.False(t, f.blobs.Has(oldAdhar))
	assert.True(t, f.blobs.Has(oldPan))
	assert.Equal(t, []string{oldAdhar}, f.blobs.Deleted())
}

func TestDeletePartnerRemovesBlobsAndFollowUps(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "g@example.com"),
		filesOf(upload("adharImage", "a.png"), upload("panImage", "p.png")))
	require.NoError(t, err)

	f.blobs.FailDelete(*p.AdharImage, errors.New("timeout"))

	require.NoError(t, f.svc.DeletePartner(ctx, admin, types.RoleGuestUser, p.ID))

	assert.Equal(t, 0, f.partners[types.RoleGuestUser].Len())
	assert.Equal(t, 0, f.followUps.Len())
	assert.ElementsMatch(t, []string{*p.AdharImage, *p.PanImage}, f.blobs.Deleted())
	assert.False(t, f.blobs.Has(*p.PanImage))

	err = f.svc.DeletePartner(ctx, admin, types.RoleGuestUser, p.ID)
	assert.Equal(t, pipeline.KindNotFound, kindOf(t, err))
}

func TestAssignLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleSalesPerson, guestInput("9876543210", "sp@example.com"), Files{})
	require.NoError(t, err)

	msg, err := f.svc.AssignLogin(ctx, admin, types.RoleSalesPerson, p.ID, &LoginInput{Username: "asha", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, msgLoginAssigned, msg)

	stored, err := f.partners[types.RoleSalesPerson].Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, stored.LoginStatus)
	require.NotNil(t, stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.Password), []byte("s3cret!")))

	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "sp@example.com", f.mail.sent[0].Email)
	assert.Equal(t, "s3cret!", f.mail.sent[0].Password)
}

func TestAssignLoginEmailFailureIsPartialSuccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.svc.AddPartner(ctx, admin, types.RoleGuestUser, guestInput("9876543210", "g@example.com"), Files{})
	require.NoError(t, err)

	f.mail.err = errors.New("smtp: 421 service not available")
	msg, err := f.svc.AssignLogin(ctx, admin, types.RoleGuestUser, p.ID, &LoginInput{Username: "guest", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Equal(t, msgLoginAssignedNoMail, msg)

	stored, err := f.partners[types.RoleGuestUser].Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, stored.LoginStatus)
}
