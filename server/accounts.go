package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jrsteele09/go-auth-client/users"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	profile      users.Profile
	passwordHash string
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// fieldErrors is a DRF validation body. It marshals as an object whose keys
// keep insertion order, which is what clients report as "the first error".
type fieldErrors []fieldError

type fieldError struct {
	field    string
	messages []string
}

func (fe *fieldErrors) add(field, message string) {
	for i := range *fe {
		if (*fe)[i].field == field {
			(*fe)[i].messages = append((*fe)[i].messages, message)
			return
		}
	}
	*fe = append(*fe, fieldError{field: field, messages: []string{message}})
}

func (fe fieldErrors) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range fe {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.field)
		if err != nil {
			return nil, err
		}
		msgs, err := json.Marshal(e.messages)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(msgs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

const requiredFieldMessage = "This field is required."

var validGenders = map[string]struct{}{"Male": {}, "Female": {}, "Other": {}}

// validateRegistration mirrors the API's serializer: per-field checks in
// field order, then the cross-field password check only if those pass.
// Callers must hold s.mu.
func (s *Server) validateRegistration(reg users.Registration) fieldErrors {
	var errs fieldErrors

	required := []struct{ field, value string }{
		{"username", reg.Username},
		{"email", reg.Email},
		{"password", reg.Password},
		{"confirm_password", reg.ConfirmPassword},
		{"first_name", reg.FirstName},
		{"last_name", reg.LastName},
		{"user_type", string(reg.UserType)},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errs.add(f.field, requiredFieldMessage)
		}
	}

	if reg.Username != "" {
		if _, taken := s.accounts[reg.Username]; taken {
			errs.add("username", "A user with that username already exists.")
		}
	}
	if reg.Email != "" {
		if !users.ValidEmail(reg.Email) {
			errs.add("email", "Enter a valid email address.")
		} else if s.emailTaken(reg.Email) {
			errs.add("email", "user with this email already exists.")
		}
	}
	if reg.Password != "" {
		if len(reg.Password) < 8 {
			errs.add("password", "This password is too short. It must contain at least 8 characters.")
		}
		if strings.Trim(reg.Password, "0123456789") == "" {
			errs.add("password", "This password is entirely numeric.")
		}
	}
	if reg.UserType != "" && !reg.UserType.Valid() {
		errs.add("user_type", fmt.Sprintf("%q is not a valid choice.", reg.UserType))
	}
	if reg.UserType == users.UserTypeCustomerUser && strings.TrimSpace(reg.ParentCustomerID) == "" {
		errs.add("parent_customer_id", "This field is required for customer users.")
	}
	if reg.Gender != "" {
		if _, ok := validGenders[reg.Gender]; !ok {
			errs.add("gender", fmt.Sprintf("%q is not a valid choice.", reg.Gender))
		}
	}

	if len(errs) == 0 && reg.Password != reg.ConfirmPassword {
		errs.add("confirm_password", "Passwords do not match.")
	}
	return errs
}

func (s *Server) emailTaken(email string) bool {
	for _, acc := range s.accounts {
		if strings.EqualFold(acc.profile.Email, email) {
			return true
		}
	}
	return false
}

// createAccount stores a validated registration. Callers must hold s.mu.
func (s *Server) createAccount(reg users.Registration) (*account, error) {
	hash, err := HashPassword(reg.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	s.nextID++
	acc := &account{
		passwordHash: hash,
		profile: users.Profile{
			ID:               s.nextID,
			Username:         reg.Username,
			Email:            reg.Email,
			FirstName:        reg.FirstName,
			LastName:         reg.LastName,
			UserType:         reg.UserType,
			DateJoined:       s.opts.Clock().UTC(),
			Birthday:         reg.Birthday,
			Gender:           reg.Gender,
			ParentCustomerID: reg.ParentCustomerID,
		},
	}
	s.accounts[reg.Username] = acc
	return acc, nil
}

// CreateUser registers an account directly, bypassing HTTP. Used to seed
// the dev server and tests.
func (s *Server) CreateUser(reg users.Registration, approved bool) (users.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if errs := s.validateRegistration(reg); len(errs) > 0 {
		raw, _ := errs.MarshalJSON()
		return users.Profile{}, fmt.Errorf("invalid registration: %s", raw)
	}
	acc, err := s.createAccount(reg)
	if err != nil {
		return users.Profile{}, err
	}
	acc.profile.IsApproved = approved
	return acc.profile, nil
}

// ApproveUser marks username as approved by its customer administrator
func (s *Server) ApproveUser(username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return fmt.Errorf("user %q not found", username)
	}
	acc.profile.IsApproved = true
	return nil
}

// User returns the stored profile for username
func (s *Server) User(username string) (users.Profile, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, ok := s.accounts[username]
	if !ok {
		return users.Profile{}, false
	}
	return acc.profile, true
}
