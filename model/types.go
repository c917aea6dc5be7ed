package model

// CallType selects call direction for the list request. The zero value
// means both directions.
type CallType int

const (
	CallTypeAll CallType = iota
	CallTypeInbound
	CallTypeOutbound
)

// Param returns the in_out query value and whether the type is set.
func (t CallType) Param() (string, bool) {
	switch t {
	case CallTypeInbound:
		return "1", true
	case CallTypeOutbound:
		return "0", true
	default:
		return "", false
	}
}

func (t CallType) Label() string {
	switch t {
	case CallTypeAll:
		return "Все типы"
	case CallTypeInbound:
		return "Входящие"
	case CallTypeOutbound:
		return "Исходящие"
	default:
		return "Неизвестный тип звонка"
	}
}

// Next cycles all -> inbound -> outbound -> all.
func (t CallType) Next() CallType {
	switch t {
	case CallTypeAll:
		return CallTypeInbound
	case CallTypeInbound:
		return CallTypeOutbound
	default:
		return CallTypeAll
	}
}

type Rating int

const (
	RatingGood Rating = iota
	RatingBad
	RatingExcellent
)

func (r *Rating) UnmarshalJSON(data []byte) error {
	var v FlexInt
	if err := v.UnmarshalJSON(data); err != nil {
		return err
	}
	*r = Rating(v)
	return nil
}

func (r Rating) Label() string {
	switch r {
	case RatingBad:
		return "Плохо"
	case RatingGood:
		return "Хорошо"
	case RatingExcellent:
		return "Отлично"
	default:
		return "Неизвестное значение оценки"
	}
}
