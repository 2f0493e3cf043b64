package verification

import (
	"errors"
	"strings"
)

// ResponseSource источник терминального перехода окна ответа
type ResponseSource string

const (
	SourceManual ResponseSource = "manual" // Явное действие клиента
	SourceAuto   ResponseSource = "auto"   // Срабатывание таймера
)

var (
	// ErrAlreadyResolved ответ уже записан любым из путей; повторный ответ — no-op
	ErrAlreadyResolved = errors.New("verification already resolved")
	// ErrDisputeReasonRequired спор без причины не принимается
	ErrDisputeReasonRequired = errors.New("dispute reason is required")
)

const (
	autoApproveNote     = "[automatic] Approved after the response window expired without client action"
	manualApprovePrefix = "[manual]"
)

// ApprovalNotes формирует примечание к подтверждению. Ручное и автоматическое
// подтверждения дают одинаковый статус отправки и различимы только пометкой.
func ApprovalNotes(source ResponseSource, notes string) string {
	if source == SourceAuto {
		return autoApproveNote
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return manualApprovePrefix + " Approved by client"
	}
	return manualApprovePrefix + " " + notes
}

// IsAutoApproval распознает системную пометку в сохраненном примечании
func IsAutoApproval(notes string) bool {
	return strings.HasPrefix(notes, "[automatic]")
}

// ValidateDisputeReason причина спора обязательна и попадает в
// cancellation_reason отправки
func ValidateDisputeReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrDisputeReasonRequired
	}
	return nil
}
