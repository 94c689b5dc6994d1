package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlertTrigger_MaybeAlert(t *testing.T) {
	trigger := AlertTrigger{Threshold: DefaultAlertThreshold}
	changes := []ChangeEntry{{RecordID: "1", Name: "milk", Category: "dairy", Action: ChangeAdded}}

	assert.Nil(t, trigger.MaybeAlert(0, nil, "u", "d", detectedAt))
	assert.Nil(t, trigger.MaybeAlert(3, changes, "u", "d", detectedAt))

	alert := trigger.MaybeAlert(4, changes, "u", "d", detectedAt)
	require.NotNil(t, alert)
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, changes, alert.Changes)
	assert.Equal(t, AlertStatusPending, alert.Status)

	// The alert keeps its own copy of the change log.
	changes[0].Name = "changed"
	assert.Equal(t, "milk", alert.Changes[0].Name)
}

func TestAlertTrigger_EmptyChangeLog(t *testing.T) {
	alert := AlertTrigger{Threshold: 3}.MaybeAlert(5, nil, "u", "d", detectedAt)
	require.NotNil(t, alert)
	assert.NotNil(t, alert.Changes)
	assert.Empty(t, alert.Changes)
}
