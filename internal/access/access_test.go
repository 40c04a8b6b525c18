// AngelaMos | 2026
// access_test.go

package access

import (
	"fmt"
	"testing"
)

const (
	self  = "6f1c2d7e-0000-4000-8000-000000000001"
	other = "6f1c2d7e-0000-4000-8000-000000000002"
)

func TestUnauthenticatedIsDeniedEverything(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RoleUser, ""} {
		for _, res := range Resources() {
			for _, act := range Actions() {
				target := Target{Resource: res, OwnerID: ""}
				if IsAllowed(role, "", act, target) {
					t.Errorf("role %q %s %s without identity: allowed", role, act, res)
				}
			}
		}
	}
}

func TestAdminIsAllowedEverything(t *testing.T) {
	for _, res := range Resources() {
		for _, act := range Actions() {
			for _, owner := range []string{"", self, other} {
				target := Target{Resource: res, OwnerID: owner}
				if !IsAllowed(RoleAdmin, self, act, target) {
					t.Errorf("admin %s %s owner=%q: denied", act, res, owner)
				}
			}
		}
	}
}

func TestUnknownRoleIsDenied(t *testing.T) {
	target := Target{Resource: ResourceProduct}
	if IsAllowed(Role("superuser"), self, ActionList, target) {
		t.Fatal("unknown role was allowed to list products")
	}
}

func TestUserPolicyMatrix(t *testing.T) {
	type want struct {
		own, foreign bool
	}

	// own: target owned by the caller, foreign: owned by someone else.
	matrix := map[Resource]map[Action]want{
		ResourceUser: {
			ActionList:   {false, false},
			ActionShow:   {true, false},
			ActionNew:    {false, false},
			ActionEdit:   {true, false},
			ActionDelete: {false, false},
			ActionPlace:  {false, false},
		},
		ResourceCategory: {
			ActionList:   {true, true},
			ActionShow:   {true, true},
			ActionNew:    {false, false},
			ActionEdit:   {false, false},
			ActionDelete: {false, false},
			ActionPlace:  {false, false},
		},
		ResourceProduct: {
			ActionList:   {true, true},
			ActionShow:   {true, true},
			ActionNew:    {false, false},
			ActionEdit:   {false, false},
			ActionDelete: {false, false},
			ActionPlace:  {false, false},
		},
		ResourceOrder: {
			ActionList:   {true, true},
			ActionShow:   {true, true},
			ActionNew:    {false, false},
			ActionEdit:   {false, false},
			ActionDelete: {false, false},
			ActionPlace:  {true, false},
		},
		ResourceOrderLine: {
			ActionList:   {false, false},
			ActionShow:   {false, false},
			ActionNew:    {false, false},
			ActionEdit:   {false, false},
			ActionDelete: {false, false},
			ActionPlace:  {false, false},
		},
		ResourceSetting: {
			ActionList:   {false, false},
			ActionShow:   {false, false},
			ActionNew:    {false, false},
			ActionEdit:   {false, false},
			ActionDelete: {false, false},
			ActionPlace:  {false, false},
		},
	}

	for _, res := range Resources() {
		for _, act := range Actions() {
			w, ok := matrix[res][act]
			if !ok {
				t.Fatalf("matrix missing %s/%s", res, act)
			}

			t.Run(fmt.Sprintf("%s/%s", res, act), func(t *testing.T) {
				got := IsAllowed(RoleUser, self, act, Target{Resource: res, OwnerID: self})
				if got != w.own {
					t.Errorf("own record: got %v, want %v", got, w.own)
				}

				got = IsAllowed(RoleUser, self, act, Target{Resource: res, OwnerID: other})
				if got != w.foreign {
					t.Errorf("foreign record: got %v, want %v", got, w.foreign)
				}
			})
		}
	}
}

func TestShowUserSelfVersusOther(t *testing.T) {
	if IsAllowed(RoleUser, self, ActionShow, Target{Resource: ResourceUser, OwnerID: other}) {
		t.Error("user could show another user's record")
	}
	if !IsAllowed(RoleUser, self, ActionShow, Target{Resource: ResourceUser, OwnerID: self}) {
		t.Error("user could not show their own record")
	}
}

func TestSelfOnlyRequiresOwner(t *testing.T) {
	if IsAllowed(RoleUser, self, ActionShow, Target{Resource: ResourceUser}) {
		t.Error("self-only action allowed without a resolved owner")
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"admin", RoleAdmin, true},
		{"user", RoleUser, true},
		{"Admin", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := ParseRole(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseRole(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCallerCan(t *testing.T) {
	c := Caller{ID: self, Role: RoleUser}
	if !c.Can(ActionPlace, Target{Resource: ResourceOrder, OwnerID: self}) {
		t.Error("caller could not place own order")
	}
	if c.Can(ActionPlace, Target{Resource: ResourceOrder, OwnerID: other}) {
		t.Error("caller placed an order for someone else")
	}
	if c.IsAdmin() {
		t.Error("user caller reported as admin")
	}
}
