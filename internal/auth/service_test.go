package auth_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskhive/task-management/internal/auth"
	"github.com/taskhive/task-management/internal/authz"
)

func TestAuthService(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Auth Service Suite")
}

type mockUserRepository struct {
	passwordHash string
	userID       int64
	sessionUser  *auth.User
	getError     error
}

func (m *mockUserRepository) GetPasswordForEmail(email string) (string, int64, error) {
	if m.getError != nil {
		return "", 0, m.getError
	}
	return m.passwordHash, m.userID, nil
}

func (m *mockUserRepository) GetSessionUser(userID int64) (*auth.User, error) {
	return m.sessionUser, nil
}

var _ = Describe("AuthService", func() {
	var (
		service  *auth.Service
		repo     *mockUserRepository
		tokenGen *auth.JWTTokenGenerator
	)

	BeforeEach(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
		Expect(err).ToNot(HaveOccurred())

		repo = &mockUserRepository{
			passwordHash: string(hash),
			userID:       42,
			sessionUser:  &auth.User{ID: 42, Email: "maya@taskhive.dev", Role: authz.RoleManager, DepartmentID: 1},
		}
		tokenGen = auth.NewJWTTokenGenerator("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
		service = auth.NewService(repo, tokenGen, bcrypt.MinCost)
	})

	Describe("Authenticate", func() {
		It("returns tokens for valid credentials", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "maya@taskhive.dev", Password: "password"})

			Expect(err).ToNot(HaveOccurred())
			Expect(tokens.AccessToken).ToNot(BeEmpty())
			Expect(tokens.RefreshToken).ToNot(BeEmpty())

			claims, err := service.ValidateAccessToken(tokens.AccessToken)
			Expect(err).ToNot(HaveOccurred())
			Expect(claims.UserID).To(Equal(strconv.FormatInt(42, 10)))
			Expect(claims.Email).To(Equal("maya@taskhive.dev"))
		})

		It("rejects a wrong password", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "maya@taskhive.dev", Password: "wrong"})

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("hides unknown emails behind the same error", func() {
			repo.getError = errors.New("no rows")

			_, err := service.Authenticate(auth.LoginDTO{Email: "nobody@taskhive.dev", Password: "password"})

			Expect(err).To(MatchError(auth.ErrInvalidCredentials))
		})

		It("rejects a malformed email before touching the repository", func() {
			_, err := service.Authenticate(auth.LoginDTO{Email: "not-an-email", Password: "password"})

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("RefreshTokens", func() {
		It("issues a fresh token pair from a valid refresh token", func() {
			tokens, err := service.Authenticate(auth.LoginDTO{Email: "maya@taskhive.dev", Password: "password"})
			Expect(err).ToNot(HaveOccurred())

			refreshed, err := service.RefreshTokens(tokens.RefreshToken)

			Expect(err).ToNot(HaveOccurred())
			Expect(refreshed.AccessToken).ToNot(BeEmpty())
			Expect(refreshed.RefreshToken).ToNot(BeEmpty())
		})

		It("rejects garbage tokens", func() {
			_, err := service.RefreshTokens("not.a.token")

			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("ValidateAccessToken", func() {
		It("rejects an expired token", func() {
			expiredGen := auth.NewJWTTokenGenerator("access-secret", "refresh-secret", -time.Minute, 7*24*time.Hour)
			token, err := expiredGen.GenerateAccessToken(42, "maya@taskhive.dev")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)

			Expect(err).To(MatchError(auth.ErrTokenExpired))
		})

		It("rejects a token signed with a different secret", func() {
			otherGen := auth.NewJWTTokenGenerator("other-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour)
			token, err := otherGen.GenerateAccessToken(42, "maya@taskhive.dev")
			Expect(err).ToNot(HaveOccurred())

			_, err = service.ValidateAccessToken(token)

			Expect(err).To(MatchError(auth.ErrInvalidToken))
		})
	})

	Describe("session user", func() {
		It("maps the session user to an acting context", func() {
			u, err := service.GetSessionUser(42)

			Expect(err).ToNot(HaveOccurred())
			userCtx := u.Context()
			Expect(userCtx.UserID).To(Equal(int64(42)))
			Expect(userCtx.Role).To(Equal(authz.RoleManager))
			Expect(userCtx.DepartmentID).To(Equal(int64(1)))
		})
	})
})
