package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hopespot/rescue-server/internal/models"
)

func pendingCase() models.RescueCase {
	return models.RescueCase{
		ID:          "1700000000000",
		HelperName:  "A",
		HelperPhone: "1",
		Location:    "X",
		Notes:       "n",
		Status:      models.StatusPending,
	}
}

func admin() Actor {
	return Actor{Role: RoleAdmin}
}

func rescuer(id, name string) Actor {
	return Actor{Role: RoleRescuer, RescuerID: id, DisplayName: name}
}

func TestAdminAssignSetsAssignmentFields(t *testing.T) {
	c, err := Apply(pendingCase(), models.StatusAssigned, admin(), Aux{RescuerID: "mike-r1", RescuerName: "Mike Davis"})
	require.NoError(t, err)

	assert.Equal(t, models.StatusAssigned, c.Status)
	assert.Equal(t, "mike-r1", c.RescuerID)
	assert.Equal(t, "Mike Davis", c.AssignedRescuer)
}

func TestAdminAssignRequiresRescuerIdentity(t *testing.T) {
	_, err := Apply(pendingCase(), models.StatusAssigned, admin(), Aux{})
	assert.ErrorIs(t, err, ErrRescuerRequired)
}

func TestRescuerAcceptsForThemselves(t *testing.T) {
	c, err := Apply(pendingCase(), models.StatusAssigned, rescuer("sarah-r2", "Sarah Williams"), Aux{})
	require.NoError(t, err)

	assert.Equal(t, "sarah-r2", c.RescuerID)
	assert.Equal(t, "Sarah Williams", c.AssignedRescuer)
}

func TestReassignmentOverwrites(t *testing.T) {
	c, err := Apply(pendingCase(), models.StatusAssigned, admin(), Aux{RescuerID: "R1", RescuerName: "One"})
	require.NoError(t, err)

	// A second assignment replaces, not appends. The case must be pending
	// again for the edge to be legal.
	c.Status = models.StatusPending
	c, err = Apply(c, models.StatusAssigned, admin(), Aux{RescuerID: "R2", RescuerName: "Two"})
	require.NoError(t, err)

	assert.Equal(t, "R2", c.RescuerID)
	assert.Equal(t, "Two", c.AssignedRescuer)
}

func TestForwardGraphCannotSkipStates(t *testing.T) {
	tests := []struct {
		name      string
		from      models.Status
		requested models.Status
	}{
		{"pending to completed", models.StatusPending, models.StatusCompleted},
		{"pending to reached", models.StatusPending, models.StatusReached},
		{"pending to on-the-way", models.StatusPending, models.StatusOnTheWay},
		{"assigned to reached", models.StatusAssigned, models.StatusReached},
		{"assigned to completed", models.StatusAssigned, models.StatusCompleted},
		{"on-the-way to completed", models.StatusOnTheWay, models.StatusCompleted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := pendingCase()
			c.Status = tc.from
			c.RescuerID = "r1"
			_, err := Apply(c, tc.requested, admin(), Aux{RescuerID: "r1", RescuerName: "R"})
			assert.ErrorIs(t, err, ErrIllegalTransition)
		})
	}
}

func TestNoBackwardTransitions(t *testing.T) {
	tests := []struct {
		from      models.Status
		requested models.Status
	}{
		{models.StatusAssigned, models.StatusPending},
		{models.StatusOnTheWay, models.StatusAssigned},
		{models.StatusReached, models.StatusOnTheWay},
		{models.StatusCompleted, models.StatusReached},
		{models.StatusCompleted, models.StatusPending},
	}
	for _, tc := range tests {
		c := pendingCase()
		c.Status = tc.from
		c.RescuerID = "r1"
		_, err := Apply(c, tc.requested, rescuer("r1", "R"), Aux{})
		assert.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", tc.from, tc.requested)
	}
}

func TestProgressStepsRestrictedToAssignedRescuer(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusAssigned
	c.RescuerID = "mike-r1"
	c.AssignedRescuer = "Mike Davis"

	_, err := Apply(c, models.StatusOnTheWay, rescuer("sarah-r2", "Sarah"), Aux{})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = Apply(c, models.StatusOnTheWay, admin(), Aux{})
	assert.ErrorIs(t, err, ErrNotAuthorized)

	updated, err := Apply(c, models.StatusOnTheWay, rescuer("mike-r1", "Mike Davis"), Aux{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnTheWay, updated.Status)

	updated, err = Apply(updated, models.StatusReached, rescuer("mike-r1", "Mike Davis"), Aux{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusReached, updated.Status)
}

func TestCompletionRequiresSummaryForRescuer(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusReached
	c.RescuerID = "mike-r1"

	_, err := Apply(c, models.StatusCompleted, rescuer("mike-r1", "Mike"), Aux{})
	assert.ErrorIs(t, err, ErrSummaryRequired)

	updated, err := Apply(c, models.StatusCompleted, rescuer("mike-r1", "Mike"), Aux{Summary: "ok"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Equal(t, "ok", updated.RescuerNotes)
}

func TestAdminForceCloseWithoutSummary(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusReached
	c.RescuerID = "mike-r1"

	updated, err := Apply(c, models.StatusCompleted, admin(), Aux{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, updated.Status)
	assert.Empty(t, updated.RescuerNotes)
}

func TestAcceptedAliasNormalizesToAssigned(t *testing.T) {
	c, err := Apply(pendingCase(), models.Status("accepted"), rescuer("mike-r1", "Mike"), Aux{})
	require.NoError(t, err)
	assert.Equal(t, models.StatusAssigned, c.Status)
}

func TestUnknownStatusRejected(t *testing.T) {
	_, err := Apply(pendingCase(), models.Status("archived"), admin(), Aux{RescuerID: "r1", RescuerName: "R"})
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestRejectReturnsCaseToPool(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusOnTheWay
	c.RescuerID = "mike-r1"
	c.AssignedRescuer = "Mike Davis"

	updated, err := Reject(c, rescuer("mike-r1", "Mike Davis"))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Empty(t, updated.RescuerID)
	assert.Empty(t, updated.AssignedRescuer)
	assert.Equal(t, []string{"mike-r1"}, updated.RejectedBy)
}

func TestRejectIsIdempotentOnRejectedBy(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusAssigned
	c.RescuerID = "mike-r1"
	c.RejectedBy = []string{"mike-r1"}

	updated, err := Reject(c, rescuer("mike-r1", "Mike"))
	require.NoError(t, err)
	assert.Equal(t, []string{"mike-r1"}, updated.RejectedBy)
}

func TestRejectDeniedForOtherActors(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusAssigned
	c.RescuerID = "mike-r1"

	_, err := Reject(c, rescuer("sarah-r2", "Sarah"))
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = Reject(c, admin())
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestRejectCompletedCaseFails(t *testing.T) {
	c := pendingCase()
	c.Status = models.StatusCompleted
	c.RescuerID = "mike-r1"

	_, err := Reject(c, rescuer("mike-r1", "Mike"))
	assert.ErrorIs(t, err, ErrIllegalTransition)
}
