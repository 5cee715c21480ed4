package service

import (
	"errors"
	"testing"
	"time"

	"fieldsafe-sync-server/internal/domain"
	"fieldsafe-sync-server/pkg/hash"
)

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepo) FindByID(id string) (*domain.User, error) {
	if user, ok := m.users[id]; ok {
		return user, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockUserRepo) ListByRole(role domain.Role) ([]*domain.User, error) {
	var users []*domain.User
	for _, user := range m.users {
		if user.Role == role {
			users = append(users, user)
		}
	}
	return users, nil
}

func (m *mockUserRepo) Update(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	return err == nil, nil
}

func (m *mockUserRepo) UsernameExists(username string) (bool, error) {
	for _, user := range m.users {
		if user.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name    string
		req     *domain.RegisterRequest
		wantErr bool
		setup   func(repo *mockUserRepo)
	}{
		{
			name: "successful registration",
			req: &domain.RegisterRequest{
				Username: "newworker",
				Email:    "new@fieldsafe.test",
				Password: "HardHat2024!",
			},
			wantErr: false,
			setup:   func(repo *mockUserRepo) {},
		},
		{
			name: "duplicate email",
			req: &domain.RegisterRequest{
				Username: "anotherworker",
				Email:    "existing@fieldsafe.test",
				Password: "HardHat2024!",
			},
			wantErr: true,
			setup: func(repo *mockUserRepo) {
				hashedPw, _ := hash.Hash("Site123!")
				repo.Create(&domain.User{
					ID:       "existing-id",
					Username: "existingworker",
					Email:    "existing@fieldsafe.test",
					Password: hashedPw,
				})
			},
		},
		{
			name: "duplicate username",
			req: &domain.RegisterRequest{
				Username: "takenname",
				Email:    "unique@fieldsafe.test",
				Password: "HardHat2024!",
			},
			wantErr: true,
			setup: func(repo *mockUserRepo) {
				hashedPw, _ := hash.Hash("Site123!")
				repo.Create(&domain.User{
					ID:       "dup-id",
					Username: "takenname",
					Email:    "other@fieldsafe.test",
					Password: hashedPw,
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMockUserRepo()
			tt.setup(repo)
			service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)

			err := service.Register(tt.req)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAuthService_RegisterDefaultsToWorker(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)

	err := service.Register(&domain.RegisterRequest{
		Username: "plainworker",
		Email:    "worker@fieldsafe.test",
		Password: "ForemanPass123!",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	user, err := repo.FindByEmail("worker@fieldsafe.test")
	if err != nil {
		t.Fatalf("expected user persisted, got %v", err)
	}
	if user.Role != domain.RoleWorker {
		t.Errorf("expected default role worker, got %s", user.Role)
	}
	if user.Password == "ForemanPass123!" {
		t.Error("expected password to be hashed")
	}
}

func TestAuthService_Login(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)

	hashedPw, _ := hash.Hash("BenchSitePass123!")
	repo.Create(&domain.User{
		ID:       "user-1",
		Username: "supervisor1",
		Email:    "super@fieldsafe.test",
		Password: hashedPw,
		Role:     domain.RoleSupervisor,
	})

	res, err := service.Login(&domain.LoginRequest{
		Email:    "super@fieldsafe.test",
		Password: "BenchSitePass123!",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if res.AccessToken == "" || res.RefreshToken == "" {
		t.Error("expected both tokens in login response")
	}
	if res.User.Password != "" {
		t.Error("expected password stripped from login response")
	}

	if _, err := service.Login(&domain.LoginRequest{
		Email:    "super@fieldsafe.test",
		Password: "WrongPass123!",
	}); err == nil {
		t.Error("expected error for wrong password")
	}

	if _, err := service.Login(&domain.LoginRequest{
		Email:    "ghost@fieldsafe.test",
		Password: "BenchSitePass123!",
	}); err == nil {
		t.Error("expected error for unknown email")
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	repo := newMockUserRepo()
	service := NewAuthService(repo, "test-secret", 15*time.Minute, 7*24*time.Hour)

	hashedPw, _ := hash.Hash("SameSitePass123!")
	repo.Create(&domain.User{
		ID:       "user-1",
		Username: "worker1",
		Email:    "worker1@fieldsafe.test",
		Password: hashedPw,
		Role:     domain.RoleWorker,
	})

	login, err := service.Login(&domain.LoginRequest{
		Email:    "worker1@fieldsafe.test",
		Password: "SameSitePass123!",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	refreshed, err := service.RefreshToken(&domain.RefreshTokenRequest{
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected new access token")
	}

	if _, err := service.RefreshToken(&domain.RefreshTokenRequest{
		RefreshToken: "not-a-token",
	}); err == nil {
		t.Error("expected error for garbage refresh token")
	}
}
