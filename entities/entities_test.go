package entities

import (
	"encoding/json"
	"math"
	"testing"

	"guestcart/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseItemID(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  ItemID
	}{
		{"int", 7, 7},
		{"int64", int64(7), 7},
		{"uint32", uint32(7), 7},
		{"float64", float64(7), 7},
		{"string", "7", 7},
		{"padded string", " 7 ", 7},
		{"exponent string", "7e0", 7},
		{"json number", json.Number("7"), 7},
		{"item id", ItemID(7), 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseItemID(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseItemID_Invalid(t *testing.T) {
	for _, input := range []interface{}{
		"abc", "", "7.5", -5, 0, "-5", float64(2.5), nil, true, []int{1},
	} {
		_, err := ParseItemID(input)
		assert.ErrorIs(t, err, ErrInvalidItemID, "input %#v", input)
	}
}

func TestItemID_JSON(t *testing.T) {
	var req struct {
		ItemId ItemID `json:"item_id"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"item_id":"12"}`), &req))
	fromString := req.ItemId
	require.NoError(t, json.Unmarshal([]byte(`{"item_id":12}`), &req))
	assert.Equal(t, fromString, req.ItemId)

	assert.Error(t, json.Unmarshal([]byte(`{"item_id":"abc"}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"item_id":-5}`), &req))
	assert.Error(t, json.Unmarshal([]byte(`{"item_id":null}`), &req))

	out, err := json.Marshal(ItemID(12))
	require.NoError(t, err)
	assert.Equal(t, "12", string(out))
}

func TestProductSnapshot_Validate(t *testing.T) {
	valid := ProductSnapshot{Id: 1, Name: "Mug", Price: decimal.NewNullDecimal(decimal.NewFromInt(10))}
	assert.NoError(t, valid.Validate())

	noPrice := valid
	noPrice.Price = decimal.NullDecimal{}
	assert.ErrorIs(t, noPrice.Validate(), models.ErrBadRequest)

	noName := valid
	noName.Name = ""
	assert.ErrorIs(t, noName.Validate(), models.ErrBadRequest)

	noId := valid
	noId.Id = -1
	assert.ErrorIs(t, noId.Validate(), models.ErrBadRequest)
}

func TestProductSnapshot_MissingPriceInJSON(t *testing.T) {
	var p ProductSnapshot
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"name":"Mug"}`), &p))
	assert.False(t, p.Price.Valid)
	assert.ErrorIs(t, p.Validate(), models.ErrBadRequest)
}

func TestCart_NextItemId(t *testing.T) {
	cart := Cart{Items: []CartItem{{Id: 3}, {Id: 9}}}
	next := func() ItemID {
		id, err := cart.NextItemId()
		require.NoError(t, err)
		return id
	}
	assert.Equal(t, ItemID(10), next())
	assert.Equal(t, ItemID(11), next())

	cart.Items = nil
	assert.Equal(t, ItemID(12), next(), "counter survives removals")
}

func TestCart_NextItemId_Exhausted(t *testing.T) {
	cart := Cart{LastItemId: math.MaxInt64 - 1}
	id, err := cart.NextItemId()
	require.NoError(t, err)
	assert.Equal(t, ItemID(math.MaxInt64), id)

	_, err = cart.NextItemId()
	assert.ErrorIs(t, err, ErrItemIdsExhausted)
	assert.Equal(t, int64(math.MaxInt64), cart.LastItemId, "counter must not wrap")

	cart = Cart{Items: []CartItem{{Id: math.MaxInt64}}}
	_, err = cart.NextItemId()
	assert.ErrorIs(t, err, ErrItemIdsExhausted)

	cart = Cart{LastItemId: -3}
	_, err = cart.NextItemId()
	assert.ErrorIs(t, err, ErrItemIdsExhausted)
}

func TestCart_Find(t *testing.T) {
	cart := Cart{Items: []CartItem{{Id: 3, ProductId: 30}, {Id: 9, ProductId: 90}}}
	assert.Equal(t, 1, cart.FindItem(9))
	assert.Equal(t, -1, cart.FindItem(4))
	assert.Equal(t, 0, cart.FindProduct(30))
	assert.Equal(t, -1, cart.FindProduct(31))
}
