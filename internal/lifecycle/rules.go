package lifecycle

import "vastustructural/internal/model"

// contractorTargets are the only statuses a contractor may move a project into.
var contractorTargets = map[model.Status]bool{
	model.StatusDesignInProgress: true,
	model.StatusReviewPending:    true,
	model.StatusCompleted:        true,
}

// IsValidRole reports whether r can author project updates.
func IsValidRole(r model.ActorRole) bool {
	switch r {
	case model.RoleSystem, model.RoleAdmin, model.RoleContractor:
		return true
	}
	return false
}

// IsTransitionAllowed decides whether role may move a project from one status to another.
// Staying on the same status is a comment and is open to every role. Admin and system may
// override to any valid status. Contractors only move forward into their allow-list.
func IsTransitionAllowed(role model.ActorRole, from, to model.Status) bool {
	if !IsValid(to) || !IsValidRole(role) {
		return false
	}
	if from == to {
		return true
	}
	switch role {
	case model.RoleAdmin, model.RoleSystem:
		return true
	case model.RoleContractor:
		if !contractorTargets[to] {
			return false
		}
		fromRank, ok := Rank(from)
		if !ok {
			return false
		}
		toRank, _ := Rank(to)
		return toRank > fromRank
	}
	return false
}

// AllowedTargets lists the statuses role may choose from the current status, excluding
// the current status itself.
func AllowedTargets(role model.ActorRole, from model.Status) []model.Status {
	var out []model.Status
	for _, s := range KnownStatuses() {
		if s != from && IsTransitionAllowed(role, from, s) {
			out = append(out, s)
		}
	}
	return out
}

// KindFor classifies an update entry by whether it changes the status.
func KindFor(from, to model.Status) model.UpdateKind {
	if from == to {
		return model.UpdateKindComment
	}
	return model.UpdateKindTransition
}
