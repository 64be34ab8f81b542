// Package store provides the server-side session store for gin
// sessions, persisted in the sessions table.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net/http"
	"time"

	"clubboard/database"
	"clubboard/database/model"

	"github.com/gin-contrib/sessions"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	gorillasessions "github.com/gorilla/sessions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultMaxAge = 86400 // one day

// GormStore keeps session state in the database; the cookie carries
// only an opaque token authenticated by the securecookie codecs.
type GormStore struct {
	db      *gorm.DB
	Codecs  []securecookie.Codec
	options *sessions.Options
}

// NewGormStore creates a session store backed by db.
func NewGormStore(db *gorm.DB, keyPairs ...[]byte) *GormStore {
	return &GormStore{
		db:     db,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   defaultMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

// Options sets the default cookie options for new sessions.
func (s *GormStore) Options(opts sessions.Options) {
	s.options = &opts
}

// Get returns the registry-cached session for this request.
func (s *GormStore) Get(r *http.Request, name string) (*gorillasessions.Session, error) {
	return gorillasessions.GetRegistry(r).Get(s, name)
}

// New builds a session, loading stored values when the request carries
// a decodable cookie whose row is still live.
func (s *GormStore) New(r *http.Request, name string) (*gorillasessions.Session, error) {
	session := gorillasessions.NewSession(s, name)
	session.Options = &gorillasessions.Options{
		Path:     s.options.Path,
		Domain:   s.options.Domain,
		MaxAge:   s.options.MaxAge,
		Secure:   s.options.Secure,
		HttpOnly: s.options.HttpOnly,
		SameSite: s.options.SameSite,
	}
	session.IsNew = true

	if c, errCookie := r.Cookie(name); errCookie == nil {
		err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...)
		if err == nil {
			if err = s.load(session); err == nil {
				session.IsNew = false
			}
			// An expired or missing row degrades to a fresh session.
		}
		// Undecodable cookies (rotated secret) are ignored as well.
	}

	return session, nil
}

// Save persists the session row and writes the cookie. A negative max
// age deletes both.
func (s *GormStore) Save(r *http.Request, w http.ResponseWriter, session *gorillasessions.Session) error {
	if session.Options.MaxAge < 0 {
		if err := s.delete(session); err != nil {
			return err
		}
		http.SetCookie(w, s.newCookie(session, ""))
		return nil
	}

	if session.ID == "" {
		session.ID = uuid.NewString()
	}

	if err := s.save(session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.newCookie(session, encoded))
	return nil
}

// PurgeExpired deletes session rows past their expiry and reports how
// many were removed.
func (s *GormStore) PurgeExpired() (int64, error) {
	result := s.db.Where("expires_at <= ?", time.Now()).Delete(&model.Session{})
	return result.RowsAffected, result.Error
}

func (s *GormStore) newCookie(session *gorillasessions.Session, value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     session.Name(),
		Value:    value,
		Path:     session.Options.Path,
		Domain:   session.Options.Domain,
		MaxAge:   session.Options.MaxAge,
		Secure:   session.Options.Secure,
		HttpOnly: session.Options.HttpOnly,
		SameSite: session.Options.SameSite,
	}
	if session.Options.MaxAge > 0 {
		cookie.Expires = time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second)
	}
	return cookie
}

// save upserts the session row. Expiry is rewritten on every save, so
// active sessions slide forward.
func (s *GormStore) save(session *gorillasessions.Session) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(session.Values); err != nil {
		return fmt.Errorf("failed to encode session values: %w", err)
	}

	maxAge := session.Options.MaxAge
	if maxAge == 0 {
		maxAge = s.options.MaxAge
	}

	row := model.Session{
		Token:     session.ID,
		Data:      buf.Bytes(),
		ExpiresAt: time.Now().Add(time.Duration(maxAge) * time.Second),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "expires_at"}),
	}).Create(&row).Error
}

// load reads the session row, treating expired rows as absent.
func (s *GormStore) load(session *gorillasessions.Session) error {
	var row model.Session
	err := s.db.First(&row, "token = ?", session.ID).Error
	if database.IsNotFound(err) {
		return fmt.Errorf("session not found")
	}
	if err != nil {
		return err
	}
	if !row.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("session expired")
	}

	if err := gob.NewDecoder(bytes.NewBuffer(row.Data)).Decode(&session.Values); err != nil {
		return fmt.Errorf("failed to decode session data: %w", err)
	}
	return nil
}

func (s *GormStore) delete(session *gorillasessions.Session) error {
	if session.ID == "" {
		return nil
	}
	return s.db.Delete(&model.Session{}, "token = ?", session.ID).Error
}
