package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/gw-booking-pricing/internal/models"
	"github.com/sbilibin2017/gw-booking-pricing/internal/services"
	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	tests := []struct {
		name         string
		username     string
		password     string
		email        string
		existingUser *models.UserDB
		readerErr    error
		writerErr    error
		wantErr      error
	}{
		{
			name:     "successful registration",
			username: "alice",
			password: "pass123",
			email:    "alice@example.com",
		},
		{
			name:         "user already exists",
			username:     "bob",
			password:     "pass123",
			email:        "bob@example.com",
			existingUser: &models.UserDB{UserID: uuid.New()},
			wantErr:      services.ErrUserAlreadyExists,
		},
		{
			name:      "reader error",
			username:  "eve",
			password:  "pass123",
			email:     "eve@example.com",
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
		},
		{
			name:      "writer error",
			username:  "carol",
			password:  "pass123",
			email:     "carol@example.com",
			writerErr: errors.New("save error"),
			wantErr:   errors.New("save error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), &tt.username, &tt.email).
				Return(tt.existingUser, tt.readerErr)

			if tt.existingUser == nil && tt.readerErr == nil {
				mockWriter.EXPECT().
					Save(gomock.Any(), tt.username, gomock.Any(), tt.email).
					DoAndReturn(func(_ context.Context, _ string, hash string, _ string) error {
						// The stored value is a bcrypt hash of the password, never the password itself.
						assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(tt.password)))
						return tt.writerErr
					})
			}

			err := svc.Register(context.Background(), tt.username, tt.password, tt.email)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)
	mockJWT := services.NewMockJWTGenerator(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, mockJWT)

	password := "secret"
	hashed, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	userID := uuid.New()

	tests := []struct {
		name      string
		username  string
		user      *models.UserDB
		readerErr error
		jwtErr    error
		wantErr   error
		expectJWT string
		loginPass string
	}{
		{
			name:      "successful login",
			username:  "alice",
			user:      &models.UserDB{UserID: userID, Username: "alice", PasswordHash: string(hashed), Role: models.RoleUser},
			expectJWT: "token123",
			loginPass: password,
		},
		{
			name:      "partner token carries role",
			username:  "paula",
			user:      &models.UserDB{UserID: userID, Username: "paula", PasswordHash: string(hashed), Role: models.RolePartner},
			expectJWT: "token456",
			loginPass: password,
		},
		{
			name:      "user does not exist",
			username:  "bob",
			user:      nil,
			wantErr:   services.ErrUserDoesNotExist,
			loginPass: password,
		},
		{
			name:      "invalid password",
			username:  "carol",
			user:      &models.UserDB{UserID: uuid.New(), Username: "carol", PasswordHash: string(hashed)},
			wantErr:   services.ErrInvalidCredentials,
			loginPass: "wrongpass",
		},
		{
			name:      "reader error",
			username:  "eve",
			user:      nil,
			readerErr: errors.New("db error"),
			wantErr:   errors.New("db error"),
			loginPass: password,
		},
		{
			name:      "JWT generation error",
			username:  "dan",
			user:      &models.UserDB{UserID: userID, Username: "dan", PasswordHash: string(hashed), Role: models.RoleUser},
			jwtErr:    errors.New("jwt error"),
			wantErr:   errors.New("jwt error"),
			loginPass: password,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockReader.EXPECT().
				GetByUsernameOrEmail(gomock.Any(), &tt.username, (*string)(nil)).
				Return(tt.user, tt.readerErr)

			if tt.user != nil && tt.readerErr == nil && tt.loginPass == password {
				mockJWT.EXPECT().
					Generate(gomock.Any(), tt.user.UserID, tt.user.Role).
					Return(tt.expectJWT, tt.jwtErr)
			}

			session, err := svc.Login(context.Background(), tt.username, tt.loginPass)
			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, session)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, &services.Session{Token: tt.expectJWT, UserID: tt.user.UserID, Role: tt.user.Role}, session)
			}
		})
	}
}

func TestAuthService_AssignRole(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockReader := services.NewMockUserReader(ctrl)
	mockWriter := services.NewMockUserWriter(ctrl)

	svc := services.NewAuthService(mockReader, mockWriter, services.NewMockJWTGenerator(ctrl))

	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	super := models.Actor{UserID: uuid.New(), Role: models.RoleSuperAdmin}
	staff := models.Actor{UserID: uuid.New(), Role: models.RoleStaff}

	targetID := uuid.New()
	plainUser := &models.UserDB{UserID: targetID, Role: models.RoleUser}
	otherAdmin := &models.UserDB{UserID: targetID, Role: models.RoleAdmin}

	tests := []struct {
		name     string
		actor    models.Actor
		role     models.Role
		target   *models.UserDB
		lookup   bool
		update   bool
		wantRole models.Role
		wantErr  error
	}{
		{
			name:     "admin promotes user to partner",
			actor:    admin,
			role:     models.RolePartner,
			target:   plainUser,
			lookup:   true,
			update:   true,
			wantRole: models.RolePartner,
		},
		{
			name:    "admin cannot grant admin",
			actor:   admin,
			role:    models.RoleAdmin,
			target:  plainUser,
			lookup:  true,
			wantErr: services.ErrForbidden,
		},
		{
			name:    "admin cannot demote another admin",
			actor:   admin,
			role:    models.RoleUser,
			target:  otherAdmin,
			lookup:  true,
			wantErr: services.ErrForbidden,
		},
		{
			name:     "superadmin grants admin",
			actor:    super,
			role:     models.RoleAdmin,
			target:   plainUser,
			lookup:   true,
			update:   true,
			wantRole: models.RoleAdmin,
		},
		{
			name:    "staff cannot assign roles",
			actor:   staff,
			role:    models.RolePartner,
			wantErr: services.ErrForbidden,
		},
		{
			name:    "unknown role",
			actor:   admin,
			role:    models.Role("owner"),
			wantErr: services.ErrInvalidRole,
		},
		{
			name:    "missing user",
			actor:   admin,
			role:    models.RolePartner,
			target:  nil,
			lookup:  true,
			wantErr: services.ErrUserDoesNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.lookup {
				mockReader.EXPECT().GetByID(gomock.Any(), targetID).Return(tt.target, nil)
			}
			if tt.update {
				mockWriter.EXPECT().
					UpdateRole(gomock.Any(), targetID, tt.role).
					Return(&models.UserDB{UserID: targetID, Role: tt.role}, nil)
			}

			user, err := svc.AssignRole(context.Background(), tt.actor, targetID, tt.role)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantRole, user.Role)
		})
	}
}
