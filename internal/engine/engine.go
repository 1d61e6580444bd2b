// Package engine implements the case lifecycle state machine. It is a pure
// function of (case, requested status, actor, aux data): callers verify the
// actor's identity before invoking; the engine enforces which role may take
// which edge and what data must accompany it.
package engine

import (
	"errors"
	"fmt"

	"github.com/hopespot/rescue-server/internal/models"
)

// Role is the caller's verified role.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleRescuer Role = "rescuer"
	RoleHelper  Role = "helper"
)

// Actor is the verified identity invoking a transition.
type Actor struct {
	Role        Role
	RescuerID   string
	DisplayName string
}

// Aux carries the data accompanying a transition request.
type Aux struct {
	RescuerID   string
	RescuerName string
	Summary     string
}

var (
	ErrIllegalTransition = errors.New("illegal status transition")
	ErrNotAuthorized     = errors.New("actor not authorized for this transition")
	ErrSummaryRequired   = errors.New("rescuer summary required to complete")
	ErrRescuerRequired   = errors.New("rescuer identity required for assignment")
	ErrUnknownStatus     = errors.New("unknown status")
)

// successor is the legal forward graph. pending is the sole initial state,
// completed the sole terminal state; no skipping, no moving backward.
var successor = map[models.Status]models.Status{
	models.StatusPending:  models.StatusAssigned,
	models.StatusAssigned: models.StatusOnTheWay,
	models.StatusOnTheWay: models.StatusReached,
	models.StatusReached:  models.StatusCompleted,
}

// Apply validates the requested transition and returns the mutated copy of c.
// The input case is never modified.
func Apply(c models.RescueCase, requested models.Status, actor Actor, aux Aux) (models.RescueCase, error) {
	requested = models.NormalizeStatus(requested)
	if !models.ValidStatus(requested) {
		return c, fmt.Errorf("%w: %q", ErrUnknownStatus, requested)
	}

	current := models.NormalizeStatus(c.Status)
	if successor[current] != requested {
		return c, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, requested)
	}

	switch requested {
	case models.StatusAssigned:
		return applyAssign(c, actor, aux)
	case models.StatusOnTheWay, models.StatusReached:
		if !isAssignedRescuer(c, actor) {
			return c, ErrNotAuthorized
		}
		c.Status = requested
		return c, nil
	case models.StatusCompleted:
		return applyComplete(c, actor, aux)
	}
	return c, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, current, requested)
}

// applyAssign handles pending -> assigned. Admins assign any rescuer; a
// rescuer may accept a case for themselves. A second assignment before the
// case progressed overwrites the first.
func applyAssign(c models.RescueCase, actor Actor, aux Aux) (models.RescueCase, error) {
	switch actor.Role {
	case RoleAdmin:
		if aux.RescuerID == "" || aux.RescuerName == "" {
			return c, ErrRescuerRequired
		}
		c.RescuerID = aux.RescuerID
		c.AssignedRescuer = aux.RescuerName
	case RoleRescuer:
		if actor.RescuerID == "" {
			return c, ErrRescuerRequired
		}
		c.RescuerID = actor.RescuerID
		c.AssignedRescuer = actor.DisplayName
	default:
		return c, ErrNotAuthorized
	}
	c.Status = models.StatusAssigned
	return c, nil
}

// applyComplete handles reached -> completed. The assigned rescuer must
// supply a summary; an admin force-close may omit it.
func applyComplete(c models.RescueCase, actor Actor, aux Aux) (models.RescueCase, error) {
	switch {
	case actor.Role == RoleAdmin:
		// force-close, summary optional
	case isAssignedRescuer(c, actor):
		if aux.Summary == "" {
			return c, ErrSummaryRequired
		}
	default:
		return c, ErrNotAuthorized
	}
	c.Status = models.StatusCompleted
	if aux.Summary != "" {
		c.RescuerNotes = aux.Summary
	}
	return c, nil
}

// Reject returns a non-completed case to the offer pool. Only the assigned
// rescuer may decline; their id is recorded on the case so the offer-pool
// projection will not re-offer it to them. This is the explicit
// return-to-pool edge, distinct from the forward graph.
func Reject(c models.RescueCase, actor Actor) (models.RescueCase, error) {
	current := models.NormalizeStatus(c.Status)
	if current == models.StatusCompleted {
		return c, fmt.Errorf("%w: completed cases cannot be rejected", ErrIllegalTransition)
	}
	if actor.Role != RoleRescuer || !isAssignedRescuer(c, actor) {
		return c, ErrNotAuthorized
	}
	if !c.RejectedByContains(actor.RescuerID) {
		rejected := make([]string, 0, len(c.RejectedBy)+1)
		rejected = append(rejected, c.RejectedBy...)
		rejected = append(rejected, actor.RescuerID)
		c.RejectedBy = rejected
	}
	c.Status = models.StatusPending
	c.RescuerID = ""
	c.AssignedRescuer = ""
	return c, nil
}

func isAssignedRescuer(c models.RescueCase, actor Actor) bool {
	return actor.Role == RoleRescuer && actor.RescuerID != "" && actor.RescuerID == c.RescuerID
}
