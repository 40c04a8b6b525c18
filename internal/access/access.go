// AngelaMos | 2026
// access.go

// Package access decides whether a caller may perform an action on a
// resource. Decisions are pure: ownership is resolved by the caller and
// passed in, and nothing here touches storage or package state.
package access

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// ParseRole maps a stored or claimed role onto the closed role set.
// Anything unrecognised yields ok == false.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleUser:
		return RoleUser, true
	}
	return "", false
}

func (r Role) String() string {
	return string(r)
}

type Resource string

const (
	ResourceUser      Resource = "user"
	ResourceCategory  Resource = "category"
	ResourceProduct   Resource = "product"
	ResourceOrder     Resource = "order"
	ResourceOrderLine Resource = "order_line"
	ResourceSetting   Resource = "setting"
)

type Action string

const (
	ActionList   Action = "list"
	ActionShow   Action = "show"
	ActionNew    Action = "new"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
	// ActionPlace is placing an order on behalf of the target owner.
	ActionPlace Action = "place"
)

// Target is the record an action applies to. OwnerID is empty for
// collection-level actions and for resources without an owner.
type Target struct {
	Resource Resource
	OwnerID  string
}

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID   string
	Role Role
}

func (c Caller) Can(action Action, target Target) bool {
	return IsAllowed(c.Role, c.ID, action, target)
}

func (c Caller) IsAdmin() bool {
	return c.ID != "" && c.Role == RoleAdmin
}

type grant uint8

const (
	deny grant = iota
	anyAuthenticated
	selfOnly
)

// userPolicy is what a non-admin caller may do. Missing entries deny.
var userPolicy = map[Resource]map[Action]grant{
	ResourceUser: {
		ActionShow: selfOnly,
		ActionEdit: selfOnly,
	},
	ResourceCategory: {
		ActionList: anyAuthenticated,
		ActionShow: anyAuthenticated,
	},
	ResourceProduct: {
		ActionList: anyAuthenticated,
		ActionShow: anyAuthenticated,
	},
	ResourceOrder: {
		ActionList:  anyAuthenticated,
		ActionShow:  anyAuthenticated,
		ActionPlace: selfOnly,
	},
}

// IsAllowed applies, in order: no identity denies, admin allows, a user
// is checked against the policy table, any other role denies.
func IsAllowed(role Role, callerID string, action Action, target Target) bool {
	if callerID == "" {
		return false
	}

	switch role {
	case RoleAdmin:
		return true
	case RoleUser:
	default:
		return false
	}

	switch userPolicy[target.Resource][action] {
	case anyAuthenticated:
		return true
	case selfOnly:
		return target.OwnerID != "" && target.OwnerID == callerID
	default:
		return false
	}
}

func Resources() []Resource {
	return []Resource{
		ResourceUser,
		ResourceCategory,
		ResourceProduct,
		ResourceOrder,
		ResourceOrderLine,
		ResourceSetting,
	}
}

func Actions() []Action {
	return []Action{
		ActionList,
		ActionShow,
		ActionNew,
		ActionEdit,
		ActionDelete,
		ActionPlace,
	}
}
