package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestProperty_APIKeyAuthenticationValidity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	tempDir, err := os.MkdirTemp("", "classeur_auth_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	apiKeyManager, err := NewAPIKeyManager(tempDir)
	if err != nil {
		t.Fatalf("Failed to create API key manager: %v", err)
	}

	validKey := apiKeyManager.GetCurrentKey()

	newRouter := func() *gin.Engine {
		router := gin.New()
		router.Use(APIKeyMiddleware(apiKeyManager))
		router.GET("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})
		return router
	}

	properties.Property("valid_api_key_accepted", prop.ForAll(
		func(_ string) bool {
			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set(APIKeyHeader, validKey)

			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			return w.Code == http.StatusOK
		},
		gen.AlphaString(),
	))

	properties.Property("missing_api_key_rejected", prop.ForAll(
		func(_ string) bool {
			req, _ := http.NewRequest("GET", "/test", nil)

			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.Property("invalid_api_key_rejected", prop.ForAll(
		func(invalidKey string) bool {
			if invalidKey == validKey {
				return true
			}

			req, _ := http.NewRequest("GET", "/test", nil)
			req.Header.Set(APIKeyHeader, invalidKey)

			w := httptest.NewRecorder()
			newRouter().ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

func TestProperty_JWTTokenValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	jwtManager := NewJWTManager("test-secret-key", time.Hour)

	properties.Property("valid_jwt_token_accepted", prop.ForAll(
		func(userID uint, username string) bool {
			if userID == 0 || username == "" {
				return true
			}

			token, _, err := jwtManager.GenerateToken(userID, username)
			if err != nil {
				return false
			}

			claims, err := jwtManager.ValidateToken(token)
			if err != nil {
				return false
			}

			return claims.UserID == userID && claims.Username == username
		},
		gen.UIntRange(1, 10000),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.Property("invalid_jwt_token_rejected", prop.ForAll(
		func(invalidToken string) bool {
			_, err := jwtManager.ValidateToken(invalidToken)
			return err != nil
		},
		gen.AlphaString(),
	))

	properties.Property("tokens_from_different_secrets_rejected", prop.ForAll(
		func(userID uint, username string) bool {
			if userID == 0 || username == "" {
				return true
			}

			otherManager := NewJWTManager("different-secret", time.Hour)
			token, _, err := otherManager.GenerateToken(userID, username)
			if err != nil {
				return false
			}

			_, err = jwtManager.ValidateToken(token)
			return err != nil
		},
		gen.UIntRange(1, 10000),
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) > 0 }),
	))

	properties.TestingRun(t)
}

func TestProperty_KeyResetValidity(t *testing.T) {
	gin.SetMode(gin.TestMode)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("old_key_invalid_after_reset", prop.ForAll(
		func(_ int) bool {
			tempDir, err := os.MkdirTemp("", "classeur_reset_test_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			apiKeyManager, err := NewAPIKeyManager(tempDir)
			if err != nil {
				return false
			}

			oldKey := apiKeyManager.GetCurrentKey()
			if !apiKeyManager.ValidateKey(oldKey) {
				return false
			}

			newKey, err := apiKeyManager.ResetKey()
			if err != nil {
				return false
			}

			if apiKeyManager.ValidateKey(oldKey) {
				return false
			}
			if !apiKeyManager.ValidateKey(newKey) {
				return false
			}

			return oldKey != newKey
		},
		gen.Int(),
	))

	properties.Property("key_persists_after_reset", prop.ForAll(
		func(_ int) bool {
			tempDir, err := os.MkdirTemp("", "classeur_persist_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			apiKeyManager1, err := NewAPIKeyManager(tempDir)
			if err != nil {
				return false
			}

			newKey, err := apiKeyManager1.ResetKey()
			if err != nil {
				return false
			}

			// New manager instance simulates a restart
			apiKeyManager2, err := NewAPIKeyManager(tempDir)
			if err != nil {
				return false
			}

			if apiKeyManager2.GetCurrentKey() != newKey {
				return false
			}

			return apiKeyManager2.ValidateKey(newKey)
		},
		gen.Int(),
	))

	properties.Property("reset_key_has_correct_format", prop.ForAll(
		func(_ int) bool {
			tempDir, err := os.MkdirTemp("", "classeur_format_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			apiKeyManager, err := NewAPIKeyManager(tempDir)
			if err != nil {
				return false
			}

			newKey, err := apiKeyManager.ResetKey()
			if err != nil {
				return false
			}

			if len(newKey) != APIKeyLength*2 {
				return false
			}
			for _, c := range newKey {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					return false
				}
			}
			return true
		},
		gen.Int(),
	))

	properties.TestingRun(t)
}
