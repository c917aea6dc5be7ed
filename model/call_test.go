package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListResponseDecode(t *testing.T) {
	body := `{
		"total_rows": "2",
		"results": [
			{"id": 1, "partnership_id": 578, "date": "2024-01-05 10:23:11", "date_notime": "2024-01-05",
			 "time": 64, "in_out": 1, "source": "", "person_avatar": "https://x/noavatar.jpg",
			 "from_number": "79001112233", "to_number": "74950000000", "rating": 2, "status": "Дозвонился",
			 "record": "MToxMDA2NzYzMDoxNDI2NjkwNjc5NTow"},
			{"id": 2, "partnership_id": "578", "date": "2024-01-04 09:00:00", "date_notime": "2024-01-04",
			 "time": 0, "in_out": false, "to_number": "79005556677", "record": ""}
		]
	}`

	var resp ListResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.Len(t, resp.Results, 2)
	assert.Equal(t, FlexInt(2), resp.TotalRows)

	first := resp.Results[0]
	assert.Equal(t, "578", first.PartnershipID.String())
	assert.True(t, first.Inbound())
	assert.Equal(t, "79001112233", first.PartnerNumber())
	assert.True(t, first.HasRecord())
	assert.Equal(t, RatingExcellent, first.Rating)
	assert.Equal(t, 10, first.Time().Hour())
	assert.Equal(t, 5, first.Day().Day())

	second := resp.Results[1]
	assert.Equal(t, "578", second.PartnershipID.String())
	assert.False(t, second.Inbound())
	assert.Equal(t, "79005556677", second.PartnerNumber())
	assert.False(t, second.HasRecord())
}

func TestCallTimeInvalid(t *testing.T) {
	c := Call{Date: "yesterday", DateNoTime: "?"}
	assert.True(t, c.Time().IsZero())
	assert.True(t, c.Day().IsZero())
}

func TestCallTypeCycle(t *testing.T) {
	ct := CallTypeAll
	ct = ct.Next()
	assert.Equal(t, CallTypeInbound, ct)
	v, ok := ct.Param()
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	ct = ct.Next()
	v, ok = ct.Param()
	assert.True(t, ok)
	assert.Equal(t, "0", v)
	assert.Equal(t, "Исходящие", ct.Label())

	ct = ct.Next()
	_, ok = ct.Param()
	assert.False(t, ok)
	assert.Equal(t, "Все типы", ct.Label())
}

func TestRatingLabel(t *testing.T) {
	assert.Equal(t, "Хорошо", RatingGood.Label())
	assert.Equal(t, "Плохо", RatingBad.Label())
	assert.Equal(t, "Отлично", RatingExcellent.Label())
	assert.Equal(t, "Неизвестное значение оценки", Rating(9).Label())
}
