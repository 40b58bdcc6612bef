package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskflow/internal/handler"
	"taskflow/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func setupAuthTest() (*gin.Engine, *MockUserRepository) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	mockRepo := new(MockUserRepository)
	authHandler := handler.NewAuthHandler(mockRepo, "test-secret", time.Hour)

	r.POST("/api/auth/register", authHandler.Register)
	r.POST("/api/auth/login", authHandler.Login)

	return r, mockRepo
}

func postJSON(router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	jsonBody, _ := json.Marshal(body)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestRegister_Success(t *testing.T) {
	router, mockRepo := setupAuthTest()

	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(nil, nil)
	mockRepo.On("FindByUsername", mock.Anything, "tester").Return(nil, nil)
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.User).ID = uuid.New()
		}).
		Return(nil)

	resp := postJSON(router, "/api/auth/register", gin.H{
		"username":  "tester",
		"full_name": "Test User",
		"email":     "Test@Example.com",
		"password":  "password123",
	})

	assert.Equal(t, http.StatusCreated, resp.Code)

	var response struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"user"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
	assert.Equal(t, "test@example.com", response.User.Email, "email is lowercased")
	assert.Equal(t, "user", response.User.Role, "registration always yields the user role")
	mockRepo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	router, mockRepo := setupAuthTest()

	existing := &model.User{ID: uuid.New(), Email: "test@example.com"}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(existing, nil)

	resp := postJSON(router, "/api/auth/register", gin.H{
		"username":  "tester",
		"full_name": "Test User",
		"email":     "test@example.com",
		"password":  "password123",
	})

	assert.Equal(t, http.StatusConflict, resp.Code)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_InvalidInput(t *testing.T) {
	router, _ := setupAuthTest()

	resp := postJSON(router, "/api/auth/register", gin.H{
		"username": "tester",
		"email":    "not-an-email",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestLogin_Success(t *testing.T) {
	router, mockRepo := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.New(),
		Username:       "tester",
		Email:          "test@example.com",
		HashedPassword: string(hash),
		Role:           "manager",
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	resp := postJSON(router, "/api/auth/login", gin.H{
		"email":    "test@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, resp.Code)

	var response struct {
		Token string `json:"token"`
	}
	assert.NoError(t, json.Unmarshal(resp.Body.Bytes(), &response))
	assert.NotEmpty(t, response.Token)
}

func TestLogin_WrongPassword(t *testing.T) {
	router, mockRepo := setupAuthTest()

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &model.User{
		ID:             uuid.New(),
		Email:          "test@example.com",
		HashedPassword: string(hash),
	}
	mockRepo.On("FindByEmail", mock.Anything, "test@example.com").Return(user, nil)

	resp := postJSON(router, "/api/auth/login", gin.H{
		"email":    "test@example.com",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	router, mockRepo := setupAuthTest()

	mockRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, nil)

	resp := postJSON(router, "/api/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
