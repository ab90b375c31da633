package service

import (
	"context"
	"testing"

	"lynnops/internal/model"
	"lynnops/pkg/apperr"
)

func TestPermissionTiers(t *testing.T) {
	env := newTestEnv(t)
	superadmin, _ := env.seedUser(t, model.RoleSuperadmin)
	owner, _ := env.seedUser(t, model.RoleAdmin)
	otherAdmin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	stranger, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, owner.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapImportStock)

	ctx := context.Background()
	cases := []struct {
		name       string
		actor      model.Actor
		capability model.Capability
		want       bool
	}{
		{"superadmin always allowed", superadmin, model.CapExportStock, true},
		{"owner allowed regardless of capability", owner, model.CapExportStock, true},
		{"other admin denied", otherAdmin, "", false},
		{"user with capability allowed", user, model.CapImportStock, true},
		{"user without capability denied", user, model.CapExportStock, false},
		{"granted user has view access", user, "", true},
		{"ungranted user denied view", stranger, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.access.HasLocationAccess(ctx, tc.actor, location.ID, tc.capability)
			if err != nil {
				t.Fatalf("HasLocationAccess failed: %v", err)
			}
			if got != tc.want {
				t.Errorf("access = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestEmptyGrantMeansViewOnly(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID)

	ctx := context.Background()
	if ok, err := env.access.HasLocationAccess(ctx, user, location.ID, ""); err != nil || !ok {
		t.Errorf("view access with empty grant = (%v, %v), want (true, nil)", ok, err)
	}
	if ok, err := env.access.HasLocationAccess(ctx, user, location.ID, model.CapManageProducts); err != nil || ok {
		t.Errorf("capability with empty grant = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestReplaceGrantsTouchesOnlyOneLocation(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	_, user := env.seedUser(t, model.RoleUser)
	locationA := env.seedLocation(t, admin.ID)
	locationB := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, locationB.ID, model.CapExportStock)

	res, err := env.access.ReplaceLocationGrants(context.Background(), admin, user.ID.String(), locationA.ID.String(), ReplaceGrantsRequest{
		Permissions: []model.Capability{model.CapImportStock, model.CapManageProducts},
	})
	if err != nil {
		t.Fatalf("ReplaceLocationGrants failed: %v", err)
	}
	if len(res.Permissions) != 2 {
		t.Errorf("granted permissions = %d, want 2", len(res.Permissions))
	}

	// The grant on location B is not part of the replaced set.
	grants, err := env.access.GetUserGrants(context.Background(), admin, user.ID.String())
	if err != nil {
		t.Fatalf("GetUserGrants failed: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("grant rows = %d, want 2", len(grants))
	}
	byLocation := make(map[string][]model.Capability)
	for _, g := range grants {
		byLocation[g.LocationID] = g.Permissions
	}
	if caps := byLocation[locationB.ID.String()]; len(caps) != 1 || caps[0] != model.CapExportStock {
		t.Errorf("location B grant = %v, want [EXPORT_STOCK]", caps)
	}
}

func TestReplaceGrantsRejectsUnknownCapability(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	_, user := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)

	_, err := env.access.ReplaceLocationGrants(context.Background(), admin, user.ID.String(), location.ID.String(), ReplaceGrantsRequest{
		Permissions: []model.Capability{"LAUNCH_ROCKETS"},
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("unknown capability error = %v, want VALIDATION_ERROR", err)
	}
}

func TestGrantsOnlyApplyToUserTier(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	_, targetAdmin := env.seedUser(t, model.RoleAdmin)
	location := env.seedLocation(t, admin.ID)

	_, err := env.access.ReplaceLocationGrants(context.Background(), admin, targetAdmin.ID.String(), location.ID.String(), ReplaceGrantsRequest{
		Permissions: []model.Capability{model.CapImportStock},
	})
	if apperr.CategoryOf(err) != apperr.CategoryValidation {
		t.Fatalf("grant to admin error = %v, want VALIDATION_ERROR", err)
	}
}

func TestAdminCannotGrantOnForeignLocation(t *testing.T) {
	env := newTestEnv(t)
	owner, _ := env.seedUser(t, model.RoleAdmin)
	otherAdmin, _ := env.seedUser(t, model.RoleAdmin)
	_, user := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, owner.ID)

	_, err := env.access.ReplaceLocationGrants(context.Background(), otherAdmin, user.ID.String(), location.ID.String(), ReplaceGrantsRequest{
		Permissions: []model.Capability{model.CapImportStock},
	})
	if apperr.CategoryOf(err) != apperr.CategoryForbidden {
		t.Fatalf("foreign grant error = %v, want FORBIDDEN", err)
	}
}

func TestRevokeRemovesAllAccess(t *testing.T) {
	env := newTestEnv(t)
	admin, _ := env.seedUser(t, model.RoleAdmin)
	user, _ := env.seedUser(t, model.RoleUser)
	location := env.seedLocation(t, admin.ID)
	env.seedGrant(t, user.ID, location.ID, model.CapImportStock)

	if err := env.access.RevokeLocationGrants(context.Background(), admin, user.ID.String(), location.ID.String()); err != nil {
		t.Fatalf("RevokeLocationGrants failed: %v", err)
	}

	ok, err := env.access.HasLocationAccess(context.Background(), user, location.ID, "")
	if err != nil {
		t.Fatalf("HasLocationAccess failed: %v", err)
	}
	if ok {
		t.Error("user still has view access after revocation")
	}
}

func TestAdminSeesOnlyOwnedLocationGrants(t *testing.T) {
	env := newTestEnv(t)
	adminA, _ := env.seedUser(t, model.RoleAdmin)
	adminB, _ := env.seedUser(t, model.RoleAdmin)
	superadmin, _ := env.seedUser(t, model.RoleSuperadmin)
	user, _ := env.seedUser(t, model.RoleUser)
	locationA := env.seedLocation(t, adminA.ID)
	locationB := env.seedLocation(t, adminB.ID)
	env.seedGrant(t, user.ID, locationA.ID, model.CapImportStock)
	env.seedGrant(t, user.ID, locationB.ID, model.CapExportStock)

	grants, err := env.access.GetUserGrants(context.Background(), adminA, user.ID.String())
	if err != nil {
		t.Fatalf("GetUserGrants as admin failed: %v", err)
	}
	if len(grants) != 1 || grants[0].LocationID != locationA.ID.String() {
		t.Errorf("admin A sees %d grants, want only their own location's", len(grants))
	}

	grants, err = env.access.GetUserGrants(context.Background(), superadmin, user.ID.String())
	if err != nil {
		t.Fatalf("GetUserGrants as superadmin failed: %v", err)
	}
	if len(grants) != 2 {
		t.Errorf("superadmin sees %d grants, want 2", len(grants))
	}
}
