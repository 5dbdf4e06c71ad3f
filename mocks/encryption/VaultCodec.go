package mocks

import (
	context "context"

	models "github.com/alwitt/credvault/models"
	mock "github.com/stretchr/testify/mock"
)

// VaultCodec is an autogenerated mock type for the VaultCodec type
type VaultCodec struct {
	mock.Mock
}

// Decrypt provides a mock function with given fields: ctx, envelope, passphrase
func (_m *VaultCodec) Decrypt(ctx context.Context, envelope models.Envelope, passphrase []byte) (models.SecretPayload, error) {
	ret := _m.Called(ctx, envelope, passphrase)

	if len(ret) == 0 {
		panic("no return value specified for Decrypt")
	}

	var r0 models.SecretPayload
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, models.Envelope, []byte) (models.SecretPayload, error)); ok {
		return rf(ctx, envelope, passphrase)
	}
	if rf, ok := ret.Get(0).(func(context.Context, models.Envelope, []byte) models.SecretPayload); ok {
		r0 = rf(ctx, envelope, passphrase)
	} else {
		r0 = ret.Get(0).(models.SecretPayload)
	}

	if rf, ok := ret.Get(1).(func(context.Context, models.Envelope, []byte) error); ok {
		r1 = rf(ctx, envelope, passphrase)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Encrypt provides a mock function with given fields: ctx, payload, passphrase
func (_m *VaultCodec) Encrypt(ctx context.Context, payload models.SecretPayload, passphrase []byte) (models.Envelope, error) {
	ret := _m.Called(ctx, payload, passphrase)

	if len(ret) == 0 {
		panic("no return value specified for Encrypt")
	}

	var r0 models.Envelope
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, models.SecretPayload, []byte) (models.Envelope, error)); ok {
		return rf(ctx, payload, passphrase)
	}
	if rf, ok := ret.Get(0).(func(context.Context, models.SecretPayload, []byte) models.Envelope); ok {
		r0 = rf(ctx, payload, passphrase)
	} else {
		r0 = ret.Get(0).(models.Envelope)
	}

	if rf, ok := ret.Get(1).(func(context.Context, models.SecretPayload, []byte) error); ok {
		r1 = rf(ctx, payload, passphrase)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewVaultCodec creates a new instance of VaultCodec. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewVaultCodec(t interface {
	mock.TestingT
	Cleanup(func())
}) *VaultCodec {
	mock := &VaultCodec{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
