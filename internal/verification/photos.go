package verification

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPhotoSet набор фотографий клиента не удалось разобрать.
// Кривые данные отклоняются явно, без молчаливого приведения типов.
var ErrMalformedPhotoSet = errors.New("malformed reference photo set")

// PhotoRef нормализованная ссылка на фото: ракурс + URL
type PhotoRef struct {
	Angle Angle  `json:"angle"`
	URL   string `json:"url"`
}

// ParsePhotoSet нормализует набор фотографий клиента из сырого JSON.
// Исторические записи мобильного клиента встречаются в трех видах:
//   - массив объектов [{"angle":"front","url":"..."}]
//   - объект {"front":"url", ...} с ключами-ракурсами
//   - строка, внутри которой повторно закодирован один из двух вариантов выше
//
// Результат всегда упорядочен канонически (обязательные ракурсы, затем damage).
// Пустой или отсутствующий набор — не ошибка: возвращается пустой список.
func ParsePhotoSet(raw []byte) ([]PhotoRef, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	// Вариант со строкой: снимаем один уровень кодирования и разбираем заново
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if encoded == "" {
			return nil, nil
		}
		refs, err := ParsePhotoSet([]byte(encoded))
		if err != nil {
			return nil, fmt.Errorf("%w: nested payload: %v", ErrMalformedPhotoSet, err)
		}
		return refs, nil
	}

	var list []PhotoRef
	if err := json.Unmarshal(raw, &list); err == nil {
		return normalizeRefs(list)
	}

	var byAngle map[Angle]string
	if err := json.Unmarshal(raw, &byAngle); err == nil {
		list = list[:0]
		for angle, url := range byAngle {
			if url == "" {
				continue
			}
			list = append(list, PhotoRef{Angle: angle, URL: url})
		}
		return normalizeRefs(list)
	}

	return nil, fmt.Errorf("%w: expected array, object or encoded string", ErrMalformedPhotoSet)
}

func normalizeRefs(list []PhotoRef) ([]PhotoRef, error) {
	byAngle := make(map[Angle]PhotoRef, len(list))
	var damage []PhotoRef
	for _, ref := range list {
		if ref.URL == "" {
			return nil, fmt.Errorf("%w: empty url for angle %q", ErrMalformedPhotoSet, ref.Angle)
		}
		if !IsValidAngle(ref.Angle) {
			return nil, fmt.Errorf("%w: unknown angle %q", ErrMalformedPhotoSet, ref.Angle)
		}
		if ref.Angle == AngleDamage {
			damage = append(damage, ref)
			continue
		}
		// Последняя запись по ракурсу побеждает
		byAngle[ref.Angle] = ref
	}

	out := make([]PhotoRef, 0, len(byAngle)+len(damage))
	for _, a := range requiredAngles {
		if ref, ok := byAngle[a]; ok {
			out = append(out, ref)
		}
	}
	out = append(out, damage...)
	return out, nil
}

// ReferenceFor возвращает фото клиента для ракурса; отсутствие референса —
// нормальная ситуация, а не ошибка
func ReferenceFor(refs []PhotoRef, angle Angle) (PhotoRef, bool) {
	for _, ref := range refs {
		if ref.Angle == angle {
			return ref, true
		}
	}
	return PhotoRef{}, false
}
