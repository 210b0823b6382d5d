package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/personal-ledger/internal"
)

func TestAuth(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Auth Module Suite")
}

const testSecret = "0123456789abcdef0123456789abcdef"

// failingTokenGenerator always fails to sign.
type failingTokenGenerator struct{}

func (failingTokenGenerator) GenerateAccessToken(owner string) (string, time.Time, error) {
	return "", time.Time{}, errors.New("signer unavailable")
}

func (failingTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	return nil, internal.ErrInvalidToken
}

var _ = ginkgo.Describe("Auth Service", func() {
	var (
		service  *Service
		tokenGen *JWTTokenGenerator
	)

	ginkgo.BeforeEach(func() {
		hash, err := HashPassword("correct_password", bcrypt.MinCost)
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		tokenGen = NewJWTTokenGenerator(testSecret, time.Hour)
		service = NewService(Owner{Username: "owner", PasswordHash: hash}, tokenGen)
	})

	ginkgo.Describe("Authenticate", func() {
		ginkgo.It("should issue a bearer token for the owner", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "owner", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(tokens.AccessToken).NotTo(gomega.BeEmpty())
			gomega.Expect(tokens.TokenType).To(gomega.Equal("Bearer"))
			gomega.Expect(tokens.ExpiresAt).To(gomega.BeTemporally("~", time.Now().Add(time.Hour), time.Minute))
		})

		ginkgo.It("should reject a wrong password", func() {
			_, err := service.Authenticate(LoginDTO{Username: "owner", Password: "wrong"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should reject an unknown username", func() {
			_, err := service.Authenticate(LoginDTO{Username: "someone", Password: "correct_password"})
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidCredentials))
		})

		ginkgo.It("should report missing fields as a validation error", func() {
			_, err := service.Authenticate(LoginDTO{Username: " "})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeValidation))
		})

		ginkgo.It("should wrap signer failures as internal errors", func() {
			hash, _ := HashPassword("pw", bcrypt.MinCost)
			svc := NewService(Owner{Username: "owner", PasswordHash: hash}, failingTokenGenerator{})

			_, err := svc.Authenticate(LoginDTO{Username: "owner", Password: "pw"})
			appErr, ok := internal.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(internal.ErrorTypeInternal))
		})
	})

	ginkgo.Describe("ValidateAccessToken", func() {
		ginkgo.It("should return the owner for a token it issued", func() {
			tokens, err := service.Authenticate(LoginDTO{Username: "owner", Password: "correct_password"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			owner, err := service.ValidateAccessToken(tokens.AccessToken)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(owner).To(gomega.Equal("owner"))
		})

		ginkgo.It("should reject garbage", func() {
			_, err := service.ValidateAccessToken("not-a-token")
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a token signed with another secret", func() {
			other := NewJWTTokenGenerator("ffffffffffffffffffffffffffffffff", time.Hour)
			token, _, err := other.GenerateAccessToken("owner")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should reject a token for a different owner", func() {
			token, _, err := tokenGen.GenerateAccessToken("intruder")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrInvalidToken))
		})

		ginkgo.It("should report expired tokens distinctly", func() {
			past := time.Now().Add(-2 * time.Hour)
			claims := &Claims{
				Owner: "owner",
				RegisteredClaims: jwt.RegisteredClaims{
					ExpiresAt: jwt.NewNumericDate(past.Add(time.Hour)),
					IssuedAt:  jwt.NewNumericDate(past),
					Issuer:    tokenGen.Issuer,
				},
			}
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			_, err = service.ValidateAccessToken(token)
			gomega.Expect(err).To(gomega.Equal(internal.ErrTokenExpired))
		})
	})

	ginkgo.Describe("HashPassword", func() {
		ginkgo.It("should produce a hash bcrypt accepts", func() {
			hash, err := HashPassword("s3cret", bcrypt.MinCost)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret"))).To(gomega.Succeed())
		})
	})
})
