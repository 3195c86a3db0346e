package model

import "time"

const (
	AuthorityNormal = 0
	AuthorityAdmin  = 1

	DelFlgActive = 0
	DelFlgBanned = 1
)

type User struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	AccountName string    `gorm:"column:account_name;size:64;not null;uniqueIndex" json:"account_name"`
	Passhash    string    `gorm:"column:passhash;size:128;not null" json:"-"`
	Authority   int       `gorm:"column:authority;not null;default:0" json:"authority"`
	DelFlg      int       `gorm:"column:del_flg;not null;default:0" json:"del_flg"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }

func (u *User) Banned() bool { return u.DelFlg != DelFlgActive }

func (u *User) Admin() bool { return u.Authority == AuthorityAdmin }
