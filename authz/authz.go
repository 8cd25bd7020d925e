// Package authz holds the single authorization predicate used by every route.
// Handlers and middleware ask Allow(actor, action, resource) instead of comparing
// role strings inline.
package authz

type Role string

const (
	RoleUser         Role = "USER"
	RoleProfessional Role = "PROFESSIONAL"
	RoleAdmin        Role = "ADMIN"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionVerify Action = "verify"
)

type Kind string

const (
	KindUser                Kind = "user"
	KindProfessional        Kind = "professional"
	KindAvailability        Kind = "availability"
	KindSessionTemplate     Kind = "session_template"
	KindProfessionalSession Kind = "professional_session"
	KindAppointment         Kind = "appointment"
	KindPayment             Kind = "payment"
	KindNewsletter          Kind = "newsletter"
	KindDashboard           Kind = "dashboard"
)

// Actor is the authenticated caller as carried in the access token.
type Actor struct {
	UserID         uint
	Role           Role
	ProfessionalID uint
}

func (a Actor) Authenticated() bool {
	return a.UserID != 0
}

// Resource describes what is being acted on. OwnerID is the user that owns it
// (the patient for appointments and payments), ProfessionalID the professional
// it belongs to, when any.
type Resource struct {
	Kind           Kind
	OwnerID        uint
	ProfessionalID uint
}

// Subject is implemented by models that can describe themselves as a Resource.
type Subject interface {
	AuthzResource() Resource
}

type rule func(a Actor, action Action, r Resource) bool

var policy = map[Kind]rule{
	KindUser: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionRead, ActionUpdate:
			return owns(a, r)
		}
		return false
	},
	KindProfessional: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionRead:
			return true
		case ActionUpdate:
			return a.Role == RoleProfessional && manages(a, r)
		}
		return false
	},
	KindAvailability: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionRead:
			return true
		case ActionUpdate:
			return a.Role == RoleProfessional && manages(a, r)
		}
		return false
	},
	KindSessionTemplate: func(a Actor, action Action, r Resource) bool {
		return action == ActionRead
	},
	KindProfessionalSession: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionRead:
			return true
		case ActionCreate, ActionUpdate:
			return a.Role == RoleProfessional && manages(a, r)
		}
		return false
	},
	KindAppointment: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionCreate:
			return a.Authenticated()
		case ActionRead, ActionUpdate:
			return owns(a, r) || manages(a, r)
		}
		return false
	},
	KindPayment: func(a Actor, action Action, r Resource) bool {
		switch action {
		case ActionCreate, ActionRead:
			return owns(a, r)
		}
		return false
	},
	KindNewsletter: func(a Actor, action Action, r Resource) bool {
		return action == ActionCreate
	},
}

// Allow reports whether actor may perform action on r. Admins may do
// anything; every other decision comes from the per-kind policy.
func Allow(actor Actor, action Action, r Resource) bool {
	if actor.Authenticated() && actor.Role == RoleAdmin {
		return true
	}
	check, ok := policy[r.Kind]
	if !ok {
		return false
	}
	return check(actor, action, r)
}

// Can is Allow for anything that knows its own Resource.
func Can(actor Actor, action Action, s Subject) bool {
	return Allow(actor, action, s.AuthzResource())
}

// Own returns the resource of the given kind as owned by the actor itself. It
// is what route-level checks use before a concrete record is loaded.
func Own(actor Actor, kind Kind) Resource {
	return Resource{Kind: kind, OwnerID: actor.UserID, ProfessionalID: actor.ProfessionalID}
}

func owns(a Actor, r Resource) bool {
	return a.UserID != 0 && r.OwnerID == a.UserID
}

func manages(a Actor, r Resource) bool {
	return a.ProfessionalID != 0 && r.ProfessionalID == a.ProfessionalID
}
