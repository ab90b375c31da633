package service

import (
	"context"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestListLocationsPerRoleVisibility(t *testing.T) {
	env := newTestEnv(t)
	superadmin, _ := env.seedUser(t, model.RoleSuperadmin)
	adminA, _ := env.seedUser(t, model.RoleAdmin)
	adminB, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	locationA := env.seedLocation(t, adminA.ID)
	env.seedLocation(t, adminB.ID)
	env.seedGrant(t, user.ID, locationA.ID)

	ctx := context.Background()

	all, err := env.location.ListLocations(ctx, superadmin)
	if err != nil {
		t.Fatalf("superadmin list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("superadmin sees %d locations, want 2", len(all))
	}

	owned, err := env.location.ListLocations(ctx, adminA)
	if err != nil {
		t.Fatalf("admin list failed: %v", err)
	}
	if len(owned) != 1 || owned[0].ID != locationA.ID.String() {
		t.Errorf("admin A sees %d locations, want only their own", len(owned))
	}

	granted, err := env.location.ListLocations(ctx, user)
	if err != nil {
		t.Fatalf("user list failed: %v", err)
	}
	if len(granted) != 1 || granted[0].ID != locationA.ID.String() {
		t.Errorf("user sees %d locations, want only the granted one", len(granted))
	}
}

func TestCreateLocationOwnerAssignment(t *testing.T) {
	env := newTestEnv(t)
	superadmin, _ := env.seedUser(t, model.RoleSuperadmin)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)

	ctx := context.Background()

	// Admins always own what they create; the AdminID field is ignored for
	// them by being rejected outright.
	_, err := env.location.CreateLocation(ctx, admin, CreateLocationRequest{
		Name: "Hijack", Type: model.LocationTypeStore, AdminID: superadmin.ID.String(),
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("admin assigning owner = %v, want FORBIDDEN", err)
	}

	res, err := env.location.CreateLocation(ctx, admin, CreateLocationRequest{
		Name: "Main Store", Type: model.LocationTypeStore,
	})
	if err != nil {
		t.Fatalf("CreateLocation failed: %v", err)
	}
	if res.AdminID != admin.ID.String() {
		t.Errorf("owner = %s, want the creating admin", res.AdminID)
	}
	if res.Currency != "USD" {
		t.Errorf("currency = %s, want default USD", res.Currency)
	}

	// Superadmins may assign ownership, but only to admin-tier accounts.
	_, err = env.location.CreateLocation(ctx, superadmin, CreateLocationRequest{
		Name: "Annex", Type: model.LocationTypeWarehouse, AdminID: user.ID.String(),
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("assigning user-tier owner = %v, want VALIDATION_ERROR", err)
	}

	assigned, err := env.location.CreateLocation(ctx, superadmin, CreateLocationRequest{
		Name: "Annex", Type: model.LocationTypeWarehouse, AdminID: admin.ID.String(),
	})
	if err != nil {
		t.Fatalf("superadmin assigning admin owner failed: %v", err)
	}
	if assigned.AdminID != admin.ID.String() {
		t.Errorf("owner = %s, want the assigned admin", assigned.AdminID)
	}
}

func TestUpdateLocationForeignAdminForbidden(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.seedUser(t, model.RoleAdmin)
	otherAdmin, _ := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, owner.ID)

	_, err := env.location.UpdateLocation(context.Background(), otherAdmin, location.ID.String(), UpdateLocationRequest{
		Name: "Takeover",
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("foreign update = %v, want FORBIDDEN", err)
	}
}

func TestDeleteLocationRemovesGrants(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapImportStock)

	if err := env.location.DeleteLocation(context.Background(), admin, location.ID.String()); err != nil {
		t.Fatalf("DeleteLocation failed: %v", err)
	}

	remaining, err := env.grantRepo.ListByUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("grants after location delete = %d, want 0", len(remaining))
	}
}
