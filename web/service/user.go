// Package service implements the domain operations of the message
// board on top of the database package.
package service

import (
	"errors"
	"strings"

	"clubboard/database"
	"clubboard/database/model"
	"clubboard/logger"
	"clubboard/util/crypto"
)

// ErrUsernameTaken is returned when an insert loses the uniqueness race
// on users.username.
var ErrUsernameTaken = errors.New("Username is already taken")

// CredentialError is a failed username/password verification. The
// reason is user-facing and intentionally distinguishes the two cases,
// matching the board's historical behavior.
type CredentialError struct {
	Reason string
}

func (e *CredentialError) Error() string {
	return e.Reason
}

var (
	ErrIncorrectUsername = &CredentialError{Reason: "Incorrect username"}
	ErrIncorrectPassword = &CredentialError{Reason: "Incorrect password"}
)

// CredentialVerifier checks a credential pair and yields the matching
// user. UserService provides the local username/password strategy;
// the interface leaves room for others.
type CredentialVerifier interface {
	Verify(username, password string) (*model.User, error)
}

type UserService struct{}

var _ CredentialVerifier = (*UserService)(nil)

// Verify looks the user up by exact username and compares the password
// against the stored bcrypt hash.
func (s *UserService) Verify(username, password string) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("username = ?", username).
		First(user).
		Error
	if database.IsNotFound(err) {
		return nil, ErrIncorrectUsername
	} else if err != nil {
		return nil, err
	}

	if !crypto.CheckPasswordHash(user.Password, password) {
		return nil, ErrIncorrectPassword
	}

	return user, nil
}

// Register hashes the password and inserts the user. Membership and
// admin always start false; promotion happens elsewhere.
func (s *UserService) Register(username, password string) (*model.User, error) {
	hashedPassword, err := crypto.HashPasswordAsBcrypt(password)
	if err != nil {
		return nil, err
	}

	db := database.GetDB()
	user := &model.User{
		Username: username,
		Password: hashedPassword,
	}
	if err := db.Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	logger.Infof("registered user %q", username)
	return user, nil
}

// GetUserById resolves a user id, typically one restored from a
// session. Not-found is reported via database.IsNotFound.
func (s *UserService) GetUserById(id int) (*model.User, error) {
	db := database.GetDB()

	user := &model.User{}
	err := db.Model(model.User{}).
		Where("id = ?", id).
		First(user).
		Error
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IsUsernameTaken reports whether a user with this exact name exists.
func (s *UserService) IsUsernameTaken(username string) (bool, error) {
	db := database.GetDB()

	var count int64
	err := db.Model(model.User{}).
		Where("username = ?", username).
		Count(&count).
		Error
	return count > 0, err
}

// SetMembership flips the member flag for the given user.
func (s *UserService) SetMembership(id int, member bool) error {
	db := database.GetDB()
	return db.Model(model.User{}).
		Where("id = ?", id).
		Update("membership", member).
		Error
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
