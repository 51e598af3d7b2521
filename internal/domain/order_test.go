package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkPaid_TransitionsOnce(t *testing.T) {
	o := &Order{ID: "order-1", TotalAmount: 2500, Currency: "usd"}
	at := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	ok := o.MarkPaid(PaymentResult{
		TransactionID: "pi_1",
		Status:        "paid",
		PayerEmail:    "alice@example.com",
	}, at)

	require.True(t, ok)
	assert.True(t, o.IsPaid)
	require.NotNil(t, o.PaidAt)
	assert.Equal(t, at, *o.PaidAt)
	require.NotNil(t, o.PaymentResult)
	assert.Equal(t, "pi_1", o.PaymentResult.TransactionID)
}

func TestMarkPaid_SecondCallIsNoOp(t *testing.T) {
	o := &Order{ID: "order-1"}
	first := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	require.True(t, o.MarkPaid(PaymentResult{TransactionID: "pi_1", Status: "paid"}, first))

	ok := o.MarkPaid(PaymentResult{TransactionID: "pi_2", Status: "paid"}, first.Add(time.Hour))

	assert.False(t, ok)
	assert.Equal(t, first, *o.PaidAt)
	assert.Equal(t, "pi_1", o.PaymentResult.TransactionID)
}

func TestOrderItem_LineTotal(t *testing.T) {
	item := &OrderItem{Price: 1999, Quantity: 3}
	assert.Equal(t, int64(5997), item.LineTotal())
}

func TestCart_TotalAmount(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{ProductID: "p1", Price: 1000, Quantity: 2},
		{ProductID: "p2", Price: 500, Quantity: 1},
	}}
	assert.Equal(t, int64(2500), c.TotalAmount())
}

func TestCart_SetItemReplacesExisting(t *testing.T) {
	c := &Cart{}
	c.SetItem(CartItem{ProductID: "p1", Quantity: 1, Price: 1000})
	c.SetItem(CartItem{ProductID: "p1", Quantity: 3, Price: 1000})

	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)
}

func TestCart_RemoveItem(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{ProductID: "p1"},
		{ProductID: "p2"},
	}}

	c.RemoveItem("p1")

	require.Len(t, c.Items, 1)
	assert.Equal(t, "p2", c.Items[0].ProductID)
}
