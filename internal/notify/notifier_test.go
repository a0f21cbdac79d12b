package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/julefagdag/agenda/internal/notify"
	"github.com/julefagdag/agenda/internal/notify/mocks"
)

func TestPermissionGateAsksOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockNotifier(ctrl)
	m.EXPECT().Supported().Return(true).Times(1)
	m.EXPECT().RequestPermission(gomock.Any()).Return(notify.PermissionGranted, nil).Times(1)
	m.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	gate := notify.NewPermissionGate(m, nil)
	for i := 0; i < 2; i++ {
		ok, err := gate.Deliver(context.Background(), notify.Notification{Title: "x"})
		assert.True(t, ok)
		assert.NoError(t, err)
	}
}

func TestPermissionGateRequestErrorDisables(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := mocks.NewMockNotifier(ctrl)
	m.EXPECT().Supported().Return(true).Times(1)
	m.EXPECT().RequestPermission(gomock.Any()).Return(notify.PermissionDefault, errors.New("no session bus")).Times(1)

	gate := notify.NewPermissionGate(m, nil)
	assert.False(t, gate.Allowed(context.Background()))
	assert.False(t, gate.Allowed(context.Background()))
}

func TestPermissionGateNilNotifier(t *testing.T) {
	gate := notify.NewPermissionGate(nil, nil)
	ok, err := gate.Deliver(context.Background(), notify.Notification{})
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestDisabledNotifier(t *testing.T) {
	gate := notify.NewPermissionGate(notify.Disabled{}, nil)
	assert.False(t, gate.Allowed(context.Background()))
}
