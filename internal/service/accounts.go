// Package service holds the business rules between the HTTP handlers and
// the storage layer: validation, ownership checks, status transitions and
// money arithmetic. Handlers translate the returned apperr kinds to HTTP.
package service

import (
	"context"
	"strings"

	"materiaux-pro/internal/apperr"
	"materiaux-pro/internal/auth"
	"materiaux-pro/internal/database/models"
	"materiaux-pro/internal/storage"
)

type AccountService struct {
	store    storage.Storage
	sessions *auth.SessionManager
}

func NewAccountService(store storage.Storage, sessions *auth.SessionManager) *AccountService {
	return &AccountService{store: store, sessions: sessions}
}

type RegisterClientInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Address   *string
	Phone     *string
}

type RegisterSupplierInput struct {
	Username    string
	Email       string
	Password    string
	CompanyName string
	ContactName string
	Address     *string
	Phone       *string
	Description *string
}

// RegisterClient creates the user and client profile atomically and opens
// a session for the new account.
func (s *AccountService) RegisterClient(ctx context.Context, input RegisterClientInput) (*models.User, string, error) {
	if err := s.validateCredentials(input.Username, input.Email, input.Password); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return nil, "", apperr.New(apperr.Validation, "first name and last name are required")
	}
	if err := s.checkAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, "", err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     string(auth.RoleClient),
	}
	client := &models.Client{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Address:   input.Address,
		Phone:     input.Phone,
	}
	if err := s.store.CreateClientWithUser(ctx, user, client); err != nil {
		return nil, "", err
	}
	user.Client = client

	token, err := s.sessions.Create(ctx, auth.Identity{UserID: user.ID, Role: auth.RoleClient})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AccountService) RegisterSupplier(ctx context.Context, input RegisterSupplierInput) (*models.User, string, error) {
	if err := s.validateCredentials(input.Username, input.Email, input.Password); err != nil {
		return nil, "", err
	}
	if strings.TrimSpace(input.CompanyName) == "" || strings.TrimSpace(input.ContactName) == "" {
		return nil, "", apperr.New(apperr.Validation, "company name and contact name are required")
	}
	if err := s.checkAvailable(ctx, input.Username, input.Email); err != nil {
		return nil, "", err
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     string(auth.RoleSupplier),
	}
	supplier := &models.Supplier{
		CompanyName: input.CompanyName,
		ContactName: input.ContactName,
		Address:     input.Address,
		Phone:       input.Phone,
		Description: input.Description,
	}
	if err := s.store.CreateSupplierWithUser(ctx, user, supplier); err != nil {
		return nil, "", err
	}
	user.Supplier = supplier

	token, err := s.sessions.Create(ctx, auth.Identity{UserID: user.ID, Role: auth.RoleSupplier})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login authenticates by email. A missing user and a wrong password are
// indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}
	if user == nil {
		return nil, "", apperr.New(apperr.Unauthorized, "invalid email or password")
	}

	ok, err := auth.ComparePasswords(password, user.Password)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", apperr.New(apperr.Unauthorized, "invalid email or password")
	}

	role, valid := auth.ParseRole(user.Role)
	if !valid {
		return nil, "", apperr.New(apperr.Internal, "account has an unknown role")
	}

	token, err := s.sessions.Create(ctx, auth.Identity{UserID: user.ID, Role: role})
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

func (s *AccountService) CurrentUser(ctx context.Context, identity auth.Identity) (*models.User, error) {
	user, err := s.store.GetUser(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID int64, current, updated string) error {
	if len(updated) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.NotFound, "user not found")
	}

	ok, err := auth.ComparePasswords(current, user.Password)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.New(apperr.Unauthorized, "current password is incorrect")
	}

	hashed, err := auth.HashPassword(updated)
	if err != nil {
		return err
	}
	user.Password = hashed
	return s.store.UpdateUser(ctx, user)
}

// --- Profiles ---

func (s *AccountService) ClientProfile(ctx context.Context, identity auth.Identity) (*models.Client, error) {
	client, err := s.store.GetClientByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, apperr.New(apperr.NotFound, "client profile not found")
	}
	return client, nil
}

type UpdateClientProfileInput struct {
	FirstName *string
	LastName  *string
	Address   *string
	Phone     *string
}

func (s *AccountService) UpdateClientProfile(ctx context.Context, identity auth.Identity, input UpdateClientProfileInput) (*models.Client, error) {
	client, err := s.ClientProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		client.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		client.LastName = *input.LastName
	}
	if input.Address != nil {
		client.Address = input.Address
	}
	if input.Phone != nil {
		client.Phone = input.Phone
	}
	if err := s.store.UpdateClient(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *AccountService) SupplierProfile(ctx context.Context, identity auth.Identity) (*models.Supplier, error) {
	supplier, err := s.store.GetSupplierByUserID(ctx, identity.UserID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperr.New(apperr.NotFound, "supplier profile not found")
	}
	return supplier, nil
}

type UpdateSupplierProfileInput struct {
	CompanyName *string
	ContactName *string
	Address     *string
	Phone       *string
	Description *string
}

func (s *AccountService) UpdateSupplierProfile(ctx context.Context, identity auth.Identity, input UpdateSupplierProfileInput) (*models.Supplier, error) {
	supplier, err := s.SupplierProfile(ctx, identity)
	if err != nil {
		return nil, err
	}

	if input.CompanyName != nil {
		supplier.CompanyName = *input.CompanyName
	}
	if input.ContactName != nil {
		supplier.ContactName = *input.ContactName
	}
	if input.Address != nil {
		supplier.Address = input.Address
	}
	if input.Phone != nil {
		supplier.Phone = input.Phone
	}
	if input.Description != nil {
		supplier.Description = input.Description
	}
	if err := s.store.UpdateSupplier(ctx, supplier); err != nil {
		return nil, err
	}
	return supplier, nil
}

// --- Admin user management ---

func (s *AccountService) ListUsers(ctx context.Context, page, limit int) ([]models.User, int64, error) {
	return s.store.ListUsers(ctx, page, limit)
}

func (s *AccountService) DeleteUser(ctx context.Context, id int64) error {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New(apperr.NotFound, "user not found")
	}
	return s.store.DeleteUser(ctx, id)
}

// --- helpers ---

func (s *AccountService) validateCredentials(username, email, password string) error {
	if strings.TrimSpace(username) == "" {
		return apperr.New(apperr.Validation, "username is required")
	}
	if strings.TrimSpace(email) == "" || !strings.Contains(email, "@") {
		return apperr.New(apperr.Validation, "a valid email is required")
	}
	if len(password) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	return nil
}

func (s *AccountService) checkAvailable(ctx context.Context, username, email string) error {
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.New(apperr.Conflict, "username already taken")
	}

	existing, err = s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperr.New(apperr.Conflict, "email already registered")
	}
	return nil
}
