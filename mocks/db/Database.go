package mocks

import (
	context "context"

	db "github.com/alwitt/credvault/db"
	mock "github.com/stretchr/testify/mock"

	models "github.com/alwitt/credvault/models"
)

// Database is an autogenerated mock type for the Database type
type Database struct {
	mock.Mock
}

// CountEntries provides a mock function with given fields: ctx, tenantID
func (_m *Database) CountEntries(ctx context.Context, tenantID string) (int64, error) {
	ret := _m.Called(ctx, tenantID)

	if len(ret) == 0 {
		panic("no return value specified for CountEntries")
	}

	var r0 int64
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (int64, error)); ok {
		return rf(ctx, tenantID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) int64); ok {
		r0 = rf(ctx, tenantID)
	} else {
		r0 = ret.Get(0).(int64)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, tenantID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DefineNewEntry provides a mock function with given fields: ctx, tenantID, metadata, envelope
func (_m *Database) DefineNewEntry(ctx context.Context, tenantID string, metadata models.EntryMetadata, envelope models.Envelope) (models.VaultEntry, error) {
	ret := _m.Called(ctx, tenantID, metadata, envelope)

	if len(ret) == 0 {
		panic("no return value specified for DefineNewEntry")
	}

	var r0 models.VaultEntry
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, models.EntryMetadata, models.Envelope) (models.VaultEntry, error)); ok {
		return rf(ctx, tenantID, metadata, envelope)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, models.EntryMetadata, models.Envelope) models.VaultEntry); ok {
		r0 = rf(ctx, tenantID, metadata, envelope)
	} else {
		r0 = ret.Get(0).(models.VaultEntry)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, models.EntryMetadata, models.Envelope) error); ok {
		r1 = rf(ctx, tenantID, metadata, envelope)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// DeleteEntry provides a mock function with given fields: ctx, tenantID, entryID
func (_m *Database) DeleteEntry(ctx context.Context, tenantID string, entryID string) error {
	ret := _m.Called(ctx, tenantID, entryID)

	if len(ret) == 0 {
		panic("no return value specified for DeleteEntry")
	}

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) error); ok {
		r0 = rf(ctx, tenantID, entryID)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetEntry provides a mock function with given fields: ctx, tenantID, entryID
func (_m *Database) GetEntry(ctx context.Context, tenantID string, entryID string) (models.VaultEntry, error) {
	ret := _m.Called(ctx, tenantID, entryID)

	if len(ret) == 0 {
		panic("no return value specified for GetEntry")
	}

	var r0 models.VaultEntry
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string) (models.VaultEntry, error)); ok {
		return rf(ctx, tenantID, entryID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string) models.VaultEntry); ok {
		r0 = rf(ctx, tenantID, entryID)
	} else {
		r0 = ret.Get(0).(models.VaultEntry)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string) error); ok {
		r1 = rf(ctx, tenantID, entryID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// GetSampleEnvelope provides a mock function with given fields: ctx, tenantID
func (_m *Database) GetSampleEnvelope(ctx context.Context, tenantID string) (*models.Envelope, error) {
	ret := _m.Called(ctx, tenantID)

	if len(ret) == 0 {
		panic("no return value specified for GetSampleEnvelope")
	}

	var r0 *models.Envelope
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string) (*models.Envelope, error)); ok {
		return rf(ctx, tenantID)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.Envelope); ok {
		r0 = rf(ctx, tenantID)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*models.Envelope)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, tenantID)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListEntries provides a mock function with given fields: ctx, tenantID, filters
func (_m *Database) ListEntries(ctx context.Context, tenantID string, filters db.VaultEntryQueryFilter) ([]models.VaultEntry, error) {
	ret := _m.Called(ctx, tenantID, filters)

	if len(ret) == 0 {
		panic("no return value specified for ListEntries")
	}

	var r0 []models.VaultEntry
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, db.VaultEntryQueryFilter) ([]models.VaultEntry, error)); ok {
		return rf(ctx, tenantID, filters)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, db.VaultEntryQueryFilter) []models.VaultEntry); ok {
		r0 = rf(ctx, tenantID, filters)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.VaultEntry)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, db.VaultEntryQueryFilter) error); ok {
		r1 = rf(ctx, tenantID, filters)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ListVaultEvents provides a mock function with given fields: ctx, tenantID, filters
func (_m *Database) ListVaultEvents(ctx context.Context, tenantID string, filters db.VaultEventQueryFilter) ([]models.VaultEventAudit, error) {
	ret := _m.Called(ctx, tenantID, filters)

	if len(ret) == 0 {
		panic("no return value specified for ListVaultEvents")
	}

	var r0 []models.VaultEventAudit
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, db.VaultEventQueryFilter) ([]models.VaultEventAudit, error)); ok {
		return rf(ctx, tenantID, filters)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, db.VaultEventQueryFilter) []models.VaultEventAudit); ok {
		r0 = rf(ctx, tenantID, filters)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]models.VaultEventAudit)
		}
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, db.VaultEventQueryFilter) error); ok {
		r1 = rf(ctx, tenantID, filters)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// RecordUnlockEvent provides a mock function with given fields: ctx, tenantID, accepted, optimistic
func (_m *Database) RecordUnlockEvent(ctx context.Context, tenantID string, accepted bool, optimistic bool) (models.VaultEventAudit, error) {
	ret := _m.Called(ctx, tenantID, accepted, optimistic)

	if len(ret) == 0 {
		panic("no return value specified for RecordUnlockEvent")
	}

	var r0 models.VaultEventAudit
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, bool, bool) (models.VaultEventAudit, error)); ok {
		return rf(ctx, tenantID, accepted, optimistic)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, bool, bool) models.VaultEventAudit); ok {
		r0 = rf(ctx, tenantID, accepted, optimistic)
	} else {
		r0 = ret.Get(0).(models.VaultEventAudit)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, bool, bool) error); ok {
		r1 = rf(ctx, tenantID, accepted, optimistic)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// UpdateEntry provides a mock function with given fields: ctx, tenantID, entryID, metadata, envelope
func (_m *Database) UpdateEntry(ctx context.Context, tenantID string, entryID string, metadata models.EntryMetadata, envelope models.Envelope) (models.VaultEntry, error) {
	ret := _m.Called(ctx, tenantID, entryID, metadata, envelope)

	if len(ret) == 0 {
		panic("no return value specified for UpdateEntry")
	}

	var r0 models.VaultEntry
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, string, string, models.EntryMetadata, models.Envelope) (models.VaultEntry, error)); ok {
		return rf(ctx, tenantID, entryID, metadata, envelope)
	}
	if rf, ok := ret.Get(0).(func(context.Context, string, string, models.EntryMetadata, models.Envelope) models.VaultEntry); ok {
		r0 = rf(ctx, tenantID, entryID, metadata, envelope)
	} else {
		r0 = ret.Get(0).(models.VaultEntry)
	}

	if rf, ok := ret.Get(1).(func(context.Context, string, string, models.EntryMetadata, models.Envelope) error); ok {
		r1 = rf(ctx, tenantID, entryID, metadata, envelope)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// NewDatabase creates a new instance of Database. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewDatabase(t interface {
	mock.TestingT
	Cleanup(func())
}) *Database {
	mock := &Database{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}
