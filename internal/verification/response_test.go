package verification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApprovalNotesManualVsAuto(t *testing.T) {
	auto := ApprovalNotes(SourceAuto, "ignored")
	manual := ApprovalNotes(SourceManual, "all good")

	// Пути различимы только пометкой в примечании
	assert.True(t, IsAutoApproval(auto))
	assert.False(t, IsAutoApproval(manual))
	assert.Contains(t, manual, "all good")
}

func TestApprovalNotesManualDefault(t *testing.T) {
	notes := ApprovalNotes(SourceManual, "   ")
	assert.False(t, IsAutoApproval(notes))
	assert.NotEmpty(t, notes)
}

func TestValidateDisputeReason(t *testing.T) {
	assert.ErrorIs(t, ValidateDisputeReason(""), ErrDisputeReasonRequired)
	assert.ErrorIs(t, ValidateDisputeReason("   "), ErrDisputeReasonRequired)
	assert.NoError(t, ValidateDisputeReason("scratch on the left door"))
}
