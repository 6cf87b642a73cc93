package services

import (
	"context"

	"care4-server/internal/models"
	"care4-server/internal/notify"
	"care4-server/internal/repositories"
	"care4-server/internal/storage"
)

type mockUsers struct {
	CreateFn func(ctx context.Context, user *models.User) error
	ListFn   func(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	GetFn    func(ctx context.Context, id string) (*models.User, error)
}

func (m *mockUsers) Create(ctx context.Context, user *models.User) error {
	return m.CreateFn(ctx, user)
}

func (m *mockUsers) List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	return m.ListFn(ctx, filter)
}

func (m *mockUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if m.GetFn == nil {
		return &models.User{BaseModel: models.BaseModel{ID: id}, Email: "patient@example.com"}, nil
	}
	return m.GetFn(ctx, id)
}

type mockPatients struct {
	CreateFn      func(ctx context.Context, patient *models.Patient) error
	GetByUserIDFn func(ctx context.Context, userID string) (*models.Patient, error)
}

func (m *mockPatients) Create(ctx context.Context, patient *models.Patient) error {
	return m.CreateFn(ctx, patient)
}

func (m *mockPatients) GetByUserID(ctx context.Context, userID string) (*models.Patient, error) {
	if m.GetByUserIDFn == nil {
		return nil, repositories.ErrNotFound
	}
	return m.GetByUserIDFn(ctx, userID)
}

type mockAppointments struct {
	CreateFn     func(ctx context.Context, a *models.Appointment) error
	GetFn        func(ctx context.Context, id string) (*models.Appointment, error)
	UpdateFn     func(ctx context.Context, id string, fields map[string]any) (*models.Appointment, error)
	ListRecentFn func(ctx context.Context, limit int) ([]models.Appointment, error)
}

func (m *mockAppointments) Create(ctx context.Context, a *models.Appointment) error {
	return m.CreateFn(ctx, a)
}

func (m *mockAppointments) Get(ctx context.Context, id string) (*models.Appointment, error) {
	return m.GetFn(ctx, id)
}

func (m *mockAppointments) Update(ctx context.Context, id string, fields map[string]any) (*models.Appointment, error) {
	return m.UpdateFn(ctx, id, fields)
}

func (m *mockAppointments) ListRecent(ctx context.Context, limit int) ([]models.Appointment, error) {
	return m.ListRecentFn(ctx, limit)
}

type mockFiles struct {
	PutFn    func(ctx context.Context, file storage.File) (storage.Stored, error)
	GetFn    func(ctx context.Context, id string) (*storage.File, error)
	DeleteFn func(ctx context.Context, id string) error
}

func (m *mockFiles) Put(ctx context.Context, file storage.File) (storage.Stored, error) {
	return m.PutFn(ctx, file)
}

func (m *mockFiles) Get(ctx context.Context, id string) (*storage.File, error) {
	return m.GetFn(ctx, id)
}

func (m *mockFiles) Delete(ctx context.Context, id string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ctx, id)
}

type recordingNotifier struct {
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg notify.Message) error {
	n.sent = append(n.sent, msg)
	return n.err
}
