package model

import "time"

const (
	MimeJPEG = "image/jpeg"
	MimePNG  = "image/png"
	MimeGIF  = "image/gif"
)

type Post struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	UserID    int       `gorm:"column:user_id;not null;index" json:"user_id"`
	Imgdata   []byte    `gorm:"column:imgdata;type:mediumblob" json:"-"`
	Body      string    `gorm:"column:body;type:text" json:"body"`
	Mime      string    `gorm:"column:mime;size:64;not null" json:"mime"`
	CreatedAt time.Time `json:"created_at"`
}

func (Post) TableName() string { return "posts" }

// ValidMime reports whether the upload content type is one the board accepts.
func ValidMime(mime string) bool {
	switch mime {
	case MimeJPEG, MimePNG, MimeGIF:
		return true
	}
	return false
}

// ExtForMime maps a stored mime type to the URL extension used by /image/:id.:ext.
func ExtForMime(mime string) string {
	switch mime {
	case MimeJPEG:
		return "jpg"
	case MimePNG:
		return "png"
	case MimeGIF:
		return "gif"
	}
	return ""
}
