// Package model defines the persisted entities of the message board.
package model

import "time"

// User is a registered account. Password holds the bcrypt hash, never
// the plaintext. The unique index on Username is what makes concurrent
// sign-ups with the same name safe.
type User struct {
	Id         int    `json:"id" gorm:"primaryKey;autoIncrement"`
	Username   string `json:"username" gorm:"uniqueIndex;not null"`
	Password   string `json:"-" gorm:"not null"`
	Membership bool   `json:"membership" gorm:"not null;default:false"`
	Admin      bool   `json:"admin" gorm:"not null;default:false"`
}

// Message is a posted board entry.
type Message struct {
	Id        int       `json:"id" gorm:"primaryKey;autoIncrement"`
	Title     string    `json:"title" gorm:"not null"`
	Text      string    `json:"text" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// Author links a message to the user who wrote it. Both foreign keys
// cascade so deleting either side removes the link row.
type Author struct {
	Id        int     `json:"id" gorm:"primaryKey;autoIncrement"`
	AuthorId  int     `json:"authorId" gorm:"not null;index"`
	MessageId int     `json:"messageId" gorm:"not null;index"`
	User      User    `json:"-" gorm:"foreignKey:AuthorId;constraint:OnDelete:CASCADE"`
	Message   Message `json:"-" gorm:"foreignKey:MessageId;constraint:OnDelete:CASCADE"`
}

// Session is one server-side session row. Data carries the gob-encoded
// session values; the cookie only ever holds Token.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64"`
	Data      []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
}
