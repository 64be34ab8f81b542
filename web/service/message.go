package service

import (
	"time"

	"clubboard/database"
	"clubboard/database/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MessageView is one board entry joined with its author, shaped for
// rendering. Author and Id are only shown to authenticated viewers.
type MessageView struct {
	Id        int       `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	Author    string    `json:"author"`
}

type MessageService struct{}

// List returns all messages with their author names, newest first.
func (s *MessageService) List() ([]MessageView, error) {
	db := database.GetDB()

	views := make([]MessageView, 0)
	err := db.Table("messages").
		Select("messages.id, messages.title, messages.text, messages.created_at, users.username AS author").
		Joins("JOIN authors ON authors.message_id = messages.id").
		Joins("JOIN users ON users.id = authors.author_id").
		Order("messages.created_at DESC, messages.id DESC").
		Scan(&views).
		Error
	if err != nil {
		return nil, err
	}
	return views, nil
}

// Create inserts the message and its authorship link in one
// transaction; a failure leaves neither row behind.
func (s *MessageService) Create(authorId int, title, text string) (*model.Message, error) {
	db := database.GetDB()

	msg := &model.Message{
		Title: title,
		Text:  text,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(&model.Author{
			AuthorId:  authorId,
			MessageId: msg.Id,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// GetAuthorId returns the id of the message's author, or ok=false when
// the message does not exist.
func (s *MessageService) GetAuthorId(messageId int) (int, bool, error) {
	db := database.GetDB()

	author := &model.Author{}
	err := db.Model(model.Author{}).
		Where("message_id = ?", messageId).
		First(author).
		Error
	if database.IsNotFound(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return author.AuthorId, true, nil
}

// Delete removes the message by id; the authorship row goes with it via
// the cascade. Deleting an absent id is a no-op.
func (s *MessageService) Delete(id int) error {
	db := database.GetDB()
	return db.Delete(&model.Message{}, id).Error
}
