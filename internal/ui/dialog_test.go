package ui

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogResolvesWithButtonAction(t *testing.T) {
	d := NewDialog("title", "body", []DialogButton{{Label: "Save", Action: "save"}})

	assert.False(t, d.Resolve("delete"))
	_, answered := d.Result()
	assert.False(t, answered)

	go func() { d.Resolve("save") }()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	result, err := d.Wait(ctx)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "save", *result)

	assert.False(t, d.DismissBackdrop())
}

func TestDialogBackdropResolvesNil(t *testing.T) {
	d := Alert("t", "m")
	require.True(t, d.DismissBackdrop())
	result, ok := d.Result()
	assert.True(t, ok)
	assert.Nil(t, result)
}

func TestConfirmEscapeCancels(t *testing.T) {
	d := Confirm("حذف", "هل أنت متأكد؟")
	assert.False(t, d.HandleKey("Enter"))
	assert.True(t, d.HandleKey("Escape"))
	assert.False(t, d.Confirmed())

	d = Confirm("حذف", "هل أنت متأكد؟")
	d.Resolve(ActionConfirm)
	assert.True(t, d.Confirmed())
}

func TestDialogWaitHonoursContext(t *testing.T) {
	d := Alert("t", "m")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := d.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
