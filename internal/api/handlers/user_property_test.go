package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/classeur/core/internal/database"
	"github.com/classeur/core/internal/services"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// After a password reset the old password must stop working and the new
// one must log in. Changing a password requires the current one.

func TestProperty_UserPasswordResetValidity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	validPasswordGen := gen.SliceOfN(10, gen.AlphaChar()).Map(func(chars []rune) string {
		return string(chars)
	})
	validUsernameGen := gen.SliceOfN(8, gen.AlphaLowerChar()).Map(func(chars []rune) string {
		return string(chars)
	})

	properties.Property("old_password_invalid_after_reset", prop.ForAll(
		func(username, oldPassword, newPassword string) bool {
			if oldPassword == newPassword {
				newPassword = newPassword + "X"
			}

			tempDir, err := os.MkdirTemp("", "classeur_pwd_reset_test_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			db, err := database.Initialize(filepath.Join(tempDir, "test.db"))
			if err != nil {
				return false
			}
			sqlDB, _ := db.DB()
			defer sqlDB.Close()

			userService := services.NewUserService(db)

			createdUser, err := userService.CreateUser(username, oldPassword, "Test User")
			if err != nil {
				return true // skip on creation error
			}

			if _, err := userService.VerifyPassword(username, oldPassword); err != nil {
				return false
			}

			if err := userService.ResetPassword(createdUser.ID, newPassword); err != nil {
				return false
			}

			_, err = userService.VerifyPassword(username, oldPassword)
			return err != nil
		},
		validUsernameGen,
		validPasswordGen,
		validPasswordGen,
	))

	properties.Property("new_password_valid_after_reset", prop.ForAll(
		func(username, oldPassword, newPassword string) bool {
			if oldPassword == newPassword {
				newPassword = newPassword + "X"
			}

			tempDir, err := os.MkdirTemp("", "classeur_pwd_reset_test2_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			db, err := database.Initialize(filepath.Join(tempDir, "test.db"))
			if err != nil {
				return false
			}
			sqlDB, _ := db.DB()
			defer sqlDB.Close()

			userService := services.NewUserService(db)

			createdUser, err := userService.CreateUser(username, oldPassword, "Test User")
			if err != nil {
				return true // skip on creation error
			}

			if err := userService.ResetPassword(createdUser.ID, newPassword); err != nil {
				return false
			}

			verifiedUser, err := userService.VerifyPassword(username, newPassword)
			if err != nil {
				return false
			}
			return verifiedUser.ID == createdUser.ID
		},
		validUsernameGen,
		validPasswordGen,
		validPasswordGen,
	))

	properties.Property("password_change_requires_old_password", prop.ForAll(
		func(username, oldPassword, newPassword, wrongPassword string) bool {
			if oldPassword == newPassword {
				newPassword = newPassword + "X"
			}
			if wrongPassword == oldPassword {
				wrongPassword = wrongPassword + "Y"
			}

			tempDir, err := os.MkdirTemp("", "classeur_pwd_change_test_*")
			if err != nil {
				return false
			}
			defer os.RemoveAll(tempDir)

			db, err := database.Initialize(filepath.Join(tempDir, "test.db"))
			if err != nil {
				return false
			}
			sqlDB, _ := db.DB()
			defer sqlDB.Close()

			userService := services.NewUserService(db)

			createdUser, err := userService.CreateUser(username, oldPassword, "Test User")
			if err != nil {
				return true // skip on creation error
			}

			if err := userService.ChangePassword(createdUser.ID, wrongPassword, newPassword); err == nil {
				return false
			}

			if err := userService.ChangePassword(createdUser.ID, oldPassword, newPassword); err != nil {
				return false
			}

			_, err = userService.VerifyPassword(username, newPassword)
			return err == nil
		},
		validUsernameGen,
		validPasswordGen,
		validPasswordGen,
		validPasswordGen,
	))

	properties.TestingRun(t)
}
