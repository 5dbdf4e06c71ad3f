package mocks

import (
	context "context"

	db "github.com/alwitt/credvault/db"
	gorm "gorm.io/gorm"

	mock "github.com/stretchr/testify/mock"
)

// Client is an autogenerated mock type for the Client type
type Client struct {
	mock.Mock
}

// Close provides a mock function with no fields
func (_m *Client) Close() error {
	ret := _m.Called()

	if len(ret) == 0 {
		panic("no return value specified for Close")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func() error); ok {
		r0 = rf()
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// RunSQLInTransaction provides a mock function with given fields: ctx, coreLogic
func (_m *Client) RunSQLInTransaction(ctx context.Context, coreLogic func(context.Context, *gorm.DB) error) error {
	ret := _m.Called(ctx, coreLogic)

	if len(ret) == 0 {
		panic("no return value specified for RunSQLInTransaction")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context, *gorm.DB) error) error); ok {
		r0 = rf(ctx, coreLogic)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UseDatabase provides a mock function with given fields: ctx, coreLogic
func (_m *Client) UseDatabase(ctx context.Context, coreLogic func(context.Context, db.Database) error) error {
	ret := _m.Called(ctx, coreLogic)

	if len(ret) == 0 {
		panic("no return value specified for UseDatabase")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context, db.Database) error) error); ok {
		r0 = rf(ctx, coreLogic)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// UseDatabaseInTransaction provides a mock function with given fields: ctx, coreLogic
func (_m *Client) UseDatabaseInTransaction(ctx context.Context, coreLogic func(context.Context, db.Database) error) error {
	ret := _m.Called(ctx, coreLogic)

	if len(ret) == 0 {
		panic("no return value specified for UseDatabaseInTransaction")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, func(context.Context, db.Database) error) error); ok {
		r0 = rf(ctx, coreLogic)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// NewClient creates a new instance of Client. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewClient(t interface {
	mock.TestingT
	Cleanup(func())
}) *Client {
	mock := &Client{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
