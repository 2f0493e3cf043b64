package verification

// Angle ракурс фотографии автомобиля
type Angle string

const (
	AngleFront     Angle = "front"
	AngleBack      Angle = "back"
	AngleLeftSide  Angle = "left_side"
	AngleRightSide Angle = "right_side"
	AngleInterior  Angle = "interior"
	AngleDashboard Angle = "dashboard"
	// AngleDamage дополнительные снимки повреждений, не входят в обязательные
	AngleDamage Angle = "damage"
)

// requiredAngles порядок фиксирован: он же задает порядок вывода фотографий
var requiredAngles = []Angle{
	AngleFront,
	AngleBack,
	AngleLeftSide,
	AngleRightSide,
	AngleInterior,
	AngleDashboard,
}

// RequiredAngles возвращает копию списка обязательных ракурсов
func RequiredAngles() []Angle {
	out := make([]Angle, len(requiredAngles))
	copy(out, requiredAngles)
	return out
}

// RequiredPhotoCount минимальное число фотографий для отправки проверки,
// должен совпадать с длиной requiredAngles
const RequiredPhotoCount = 6

// IsValidAngle проверяет, что ракурс известен системе
func IsValidAngle(a Angle) bool {
	if a == AngleDamage {
		return true
	}
	return isRequiredAngle(a)
}

func isRequiredAngle(a Angle) bool {
	for _, r := range requiredAngles {
		if r == a {
			return true
		}
	}
	return false
}
