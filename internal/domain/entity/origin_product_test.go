package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginProductValidate(t *testing.T) {
	valid := &OriginProduct{
		ProductID:          "p1",
		TitleT:             "widget",
		RegistrationStatus: RegistrationStatusUnregistered,
	}
	require.NoError(t, valid.Validate())

	missingID := &OriginProduct{TitleT: "widget", RegistrationStatus: RegistrationStatusUnregistered}
	assert.Error(t, missingID.Validate())

	missingTitle := &OriginProduct{ProductID: "p1", RegistrationStatus: RegistrationStatusUnregistered}
	assert.Error(t, missingTitle.Validate())

	invalidStatus := &OriginProduct{ProductID: "p1", TitleC: "中文", RegistrationStatus: RegistrationStatus(99)}
	assert.Error(t, invalidStatus.Validate())
}

func TestJSONStringArrayRoundTrip(t *testing.T) {
	a := JSONStringArray{"cat-1", "cat-2"}
	val, err := a.Value()
	require.NoError(t, err)

	var out JSONStringArray
	require.NoError(t, out.Scan(val))
	assert.Equal(t, a, out)

	var nilScan JSONStringArray
	require.NoError(t, nilScan.Scan(nil))
	assert.Equal(t, JSONStringArray{}, nilScan)
}
