package verification

import (
	"errors"
	"fmt"
)

// Decision решение водителя по итогам сравнения с фото клиента
type Decision string

const (
	DecisionMatches          Decision = "matches"
	DecisionMinorDifferences Decision = "minor_differences"
	DecisionMajorIssues      Decision = "major_issues"
)

// IsValidDecision проверяет значение решения
func IsValidDecision(d Decision) bool {
	switch d {
	case DecisionMatches, DecisionMinorDifferences, DecisionMajorIssues:
		return true
	}
	return false
}

var (
	ErrUnknownAngle = errors.New("unknown photo angle")
	ErrNoPhoto      = errors.New("photo is required")
)

// CapturedPhoto снятая фотография до загрузки в хранилище
type CapturedPhoto struct {
	Angle Angle
	URI   string
}

// CaptureSession состояние фотофиксации по одной проверке.
// Повторная съемка ракурса заменяет предыдущий снимок, поэтому число
// обязательных фотографий никогда не превышает RequiredPhotoCount.
// Снимки повреждений накапливаются отдельно и в лимит не входят.
type CaptureSession struct {
	photos   map[Angle]CapturedPhoto
	damage   []CapturedPhoto
	decision *Decision
}

func NewCaptureSession() *CaptureSession {
	return &CaptureSession{
		photos: make(map[Angle]CapturedPhoto),
	}
}

// Capture регистрирует снимок ракурса, заменяя существующий
func (s *CaptureSession) Capture(angle Angle, uri string) error {
	if uri == "" {
		return ErrNoPhoto
	}
	if !IsValidAngle(angle) {
		return fmt.Errorf("%w: %q", ErrUnknownAngle, angle)
	}
	photo := CapturedPhoto{Angle: angle, URI: uri}
	if angle == AngleDamage {
		s.damage = append(s.damage, photo)
		return nil
	}
	s.photos[angle] = photo
	return nil
}

// SetDecision фиксирует решение водителя
func (s *CaptureSession) SetDecision(d Decision) error {
	if !IsValidDecision(d) {
		return fmt.Errorf("invalid decision %q", d)
	}
	s.decision = &d
	return nil
}

// Decision возвращает выбранное решение, если оно есть
func (s *CaptureSession) Decision() (Decision, bool) {
	if s.decision == nil {
		return "", false
	}
	return *s.decision, true
}

// PhotoCount число снятых обязательных ракурсов
func (s *CaptureSession) PhotoCount() int {
	return len(s.photos)
}

// MissingAngles список недостающих обязательных ракурсов
func (s *CaptureSession) MissingAngles() []Angle {
	var missing []Angle
	for _, a := range requiredAngles {
		if _, ok := s.photos[a]; !ok {
			missing = append(missing, a)
		}
	}
	return missing
}

// CanSubmit отправка возможна только при полном наборе ракурсов и решении
func (s *CaptureSession) CanSubmit() bool {
	return len(s.photos) >= RequiredPhotoCount && s.decision != nil
}

// Photos возвращает снимки в каноническом порядке ракурсов,
// затем снимки повреждений в порядке съемки
func (s *CaptureSession) Photos() []CapturedPhoto {
	out := make([]CapturedPhoto, 0, len(s.photos)+len(s.damage))
	for _, a := range requiredAngles {
		if p, ok := s.photos[a]; ok {
			out = append(out, p)
		}
	}
	out = append(out, s.damage...)
	return out
}
