package services_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fornello/pizzeria/app/models"
	"github.com/fornello/pizzeria/app/repositories"
	"github.com/fornello/pizzeria/app/services"
	"github.com/fornello/pizzeria/pkg/auth"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]models.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[user.Email]; exists {
		return repositories.ErrDuplicate
	}
	user.ID = primitive.NewObjectID()
	s.users[user.Email] = *user
	return nil
}

func authFixture() (*services.AuthService, *fakeUserStore, *auth.TokenManager) {
	store := newFakeUserStore()
	tokens := auth.NewTokenManager("test-secret")
	return services.NewAuthService(store, tokens), store, tokens
}

func TestRegisterDefaultsToStandardRole(t *testing.T) {
	svc, _, tokens := authFixture()

	user, token, err := svc.Register(context.Background(), services.RegisterInput{
		Name:     "Mario",
		Email:    "mario@example.com",
		Password: "secret123",
	}, false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleStandard {
		t.Errorf("role = %d, want standard", user.Role)
	}
	if strings.Contains(token, " ") || token == "" {
		t.Errorf("unusable token %q", token)
	}

	claims, err := tokens.ValidateToken(token)
	if err != nil {
		t.Fatalf("validate issued token: %v", err)
	}
	if claims.UserID != user.ID.Hex() || claims.Role != models.RoleStandard {
		t.Errorf("claims = %+v", claims)
	}
}

// An anonymous caller asking for the admin role must not get it.
func TestRegisterIgnoresRoleEscalation(t *testing.T) {
	svc, store, _ := authFixture()

	user, _, err := svc.Register(context.Background(), services.RegisterInput{
		Name:     "Sneaky",
		Email:    "sneaky@example.com",
		Password: "secret123",
		Role:     models.RoleAdmin,
	}, false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleStandard {
		t.Errorf("role = %d, escalation must be ignored", user.Role)
	}

	stored, _ := store.FindByEmail(context.Background(), "sneaky@example.com")
	if stored.Role != models.RoleStandard {
		t.Errorf("stored role = %d", stored.Role)
	}
}

func TestRegisterHonoursRoleForAdminRequester(t *testing.T) {
	svc, _, _ := authFixture()

	user, _, err := svc.Register(context.Background(), services.RegisterInput{
		Name:     "Luigi",
		Email:    "luigi@example.com",
		Password: "secret123",
		Role:     models.RoleAdmin,
	}, true)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Role != models.RoleAdmin {
		t.Errorf("role = %d, want admin", user.Role)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := authFixture()

	in := services.RegisterInput{Name: "Mario", Email: "mario@example.com", Password: "secret123"}
	if _, _, err := svc.Register(context.Background(), in, false); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), in, false); !errors.Is(err, services.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestRegisterHashesPassword(t *testing.T) {
	svc, store, _ := authFixture()

	if _, _, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Mario", Email: "mario@example.com", Password: "secret123",
	}, false); err != nil {
		t.Fatalf("register: %v", err)
	}

	stored, _ := store.FindByEmail(context.Background(), "mario@example.com")
	if stored.Password == "secret123" {
		t.Fatal("password stored in plain text")
	}
	if !auth.CheckPassword(stored.Password, "secret123") {
		t.Error("stored hash does not verify")
	}
}

func TestLogin(t *testing.T) {
	svc, _, tokens := authFixture()

	registered, _, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Mario", Email: "mario@example.com", Password: "secret123",
	}, false)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "mario@example.com", "secret123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("logged in as %s, want %s", user.ID.Hex(), registered.ID.Hex())
	}
	if _, err := tokens.ValidateToken(token); err != nil {
		t.Errorf("issued token invalid: %v", err)
	}
}

// Unknown email and wrong password must be indistinguishable.
func TestLoginInvalidCredentials(t *testing.T) {
	svc, _, _ := authFixture()

	if _, _, err := svc.Register(context.Background(), services.RegisterInput{
		Name: "Mario", Email: "mario@example.com", Password: "secret123",
	}, false); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, wrongPass := svc.Login(context.Background(), "mario@example.com", "nope")
	_, _, unknown := svc.Login(context.Background(), "ghost@example.com", "secret123")

	if !errors.Is(wrongPass, services.ErrInvalidCredentials) {
		t.Errorf("wrong password: got %v", wrongPass)
	}
	if !errors.Is(unknown, services.ErrInvalidCredentials) {
		t.Errorf("unknown email: got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Error("failure modes must be indistinguishable")
	}
}
